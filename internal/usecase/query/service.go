// Package query implements the retrieval-augmented answer pipeline.
//
// A query runs through four strictly sequential stages: embed the question,
// retrieve the top-matching documents, assemble the grounding context, and
// generate the answer. Every stage failure is absorbed into a fallback value
// at the stage that detected it — the pipeline always produces a result and
// never returns an error. The structured Result reports which fallbacks
// fired so callers are not left pattern-matching on the answer text.
package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/logger"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

const (
	defaultMatchCount = 5
	defaultSource     = "docs"
)

// Service orchestrates the RAG pipeline. Dependencies are
// constructor-injected; the service holds no mutable state, so one instance
// serves any number of concurrent queries.
type Service struct {
	embedder   Embedder
	retriever  Retriever
	generator  Generator
	dimensions int
	matchCount int
	source     string
	logger     *zap.Logger
}

// New creates a query service.
func New(embedder Embedder, retriever Retriever, generator Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		embedder:   embedder,
		retriever:  retriever,
		generator:  generator,
		dimensions: domain.DefaultVectorDimensions,
		matchCount: defaultMatchCount,
		source:     defaultSource,
		logger:     log,
	}
}

// WithDimensions overrides the embedding dimensionality used for the
// zero-vector fallback.
func (s *Service) WithDimensions(dims int) *Service {
	if dims > 0 {
		s.dimensions = dims
	}
	return s
}

// WithRetrieval overrides the match count and source filter.
func (s *Service) WithRetrieval(matchCount int, source string) *Service {
	if matchCount > 0 {
		s.matchCount = matchCount
	}
	if source != "" {
		s.source = source
	}
	return s
}

// Answer runs the pipeline and returns only the answer text.
// It never returns an error; see Ask for the structured form.
func (s *Service) Answer(ctx context.Context, question string) string {
	return s.Ask(ctx, question).Text
}

// Ask runs the pipeline and returns the structured result.
func (s *Service) Ask(ctx context.Context, question string) domain.Result {
	// Prefer the per-request logger (carries request_id) when present.
	log := s.logger
	if ctxLog, ok := logger.TryFromContext(ctx); ok {
		log = ctxLog
	}

	if strings.TrimSpace(question) == "" {
		log.Info("blank question")
		return s.finish(domain.Result{
			Text:         domain.NoResultsMessage,
			Outcome:      domain.OutcomeNoResults,
			Degradations: []string{"validation: " + domain.ErrEmptyQuery.Error()},
		})
	}

	var degradations []string

	vector := s.embedQuestion(ctx, question, log, &degradations)
	docs := s.retrieveDocuments(ctx, vector, log, &degradations)

	if len(docs) == 0 {
		log.Info("no documents retrieved", zap.Strings("degradations", degradations))
		return s.finish(domain.Result{
			Text:         domain.NoResultsMessage,
			Outcome:      domain.OutcomeNoResults,
			Degradations: degradations,
		})
	}

	docContext := BuildContext(docs)

	answer, err := s.generator.Generate(ctx, question, docContext)
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		return s.finish(domain.Result{
			Text:         "Error: " + err.Error(),
			Outcome:      domain.OutcomeFailed,
			Sources:      docs,
			Degradations: degradations,
		})
	}

	outcome := domain.OutcomeAnswered
	if len(degradations) > 0 {
		outcome = domain.OutcomeDegraded
	}

	return s.finish(domain.Result{
		Text:         answer,
		Outcome:      outcome,
		Sources:      docs,
		Degradations: degradations,
	})
}

// embedQuestion returns the query vector, degrading to an all-zero vector of
// the configured dimensionality when the provider fails. Retrieval still runs
// with the zero vector; quality suffers silently for this one query.
func (s *Service) embedQuestion(
	ctx context.Context, question string, log *zap.Logger, degradations *[]string,
) []float32 {
	result, err := s.embedder.Embed(ctx, question)
	if err != nil {
		log.Warn("embedding failed, using zero vector", zap.Error(err))
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageEmbedding, "fallback").Inc()
		*degradations = append(*degradations, "embedding: "+err.Error())
		return domain.ZeroVector(s.dimensions)
	}
	return result.Embedding
}

// retrieveDocuments returns the matching documents, degrading a store failure
// to an empty slice. Downstream cannot tell "nothing found" from "search
// failed" by the document list alone; the degradation note carries the cause.
func (s *Service) retrieveDocuments(
	ctx context.Context, vector []float32, log *zap.Logger, degradations *[]string,
) []domain.Document {
	docs, err := s.retriever.Retrieve(ctx, vector, s.matchCount, s.source)
	if err != nil {
		log.Warn("retrieval failed, treating as no results", zap.Error(err))
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageRetrieval, "fallback").Inc()
		*degradations = append(*degradations, "retrieval: "+err.Error())
		return nil
	}
	return docs
}

func (s *Service) finish(r domain.Result) domain.Result {
	metrics.AnswerOutcomesTotal.WithLabelValues(string(r.Outcome)).Inc()
	return r
}
