package docqa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/db"
	dbRedis "github.com/kailas-cloud/docqa/internal/db/redis"
	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
	"github.com/kailas-cloud/docqa/internal/repository/embcache"
	"github.com/kailas-cloud/docqa/internal/repository/supabase"
	openaitr "github.com/kailas-cloud/docqa/internal/transport/openai"
	"github.com/kailas-cloud/docqa/internal/usecase/query"
)

const defaultReadinessTimeout = 10 * time.Second

// Outcome classifies how a pipeline run ended.
type Outcome string

// Pipeline outcomes.
const (
	OutcomeAnswered  Outcome = Outcome(domain.OutcomeAnswered)
	OutcomeDegraded  Outcome = Outcome(domain.OutcomeDegraded)
	OutcomeNoResults Outcome = Outcome(domain.OutcomeNoResults)
	OutcomeFailed    Outcome = Outcome(domain.OutcomeFailed)
)

// Source is one documentation chunk the answer was grounded on.
type Source struct {
	Title      string
	Content    string
	Similarity float64
}

// Result is the structured pipeline outcome. Text is always non-empty;
// stage failures are absorbed into fallback text and reported through
// Outcome and Degradations.
type Result struct {
	Text         string
	Outcome      Outcome
	Sources      []Source
	Degradations []string
}

// Answered reports whether the result carries a real model answer.
func (r Result) Answered() bool {
	return r.Outcome == OutcomeAnswered || r.Outcome == OutcomeDegraded
}

// Client is the docqa SDK entry point.
type Client struct {
	svc      *query.Service
	embedder *openaitr.Embedder
	store    db.Store
}

// New creates a docqa Client. WithOpenAI and WithSupabase are required;
// when WithRedisCache is set the cache must be reachable within 10 seconds.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embedModel: "text-embedding-3-small",
		dimensions: domain.DefaultVectorDimensions,
		chatModel:  "gpt-4o-mini",
		rpc:        "match_site_pages",
		matchCount: 5,
		source:     "ultravox_docs",
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.apiKey == "" {
		return nil, errors.New("docqa: OpenAI API key required (use WithOpenAI)")
	}
	if cfg.supabaseURL == "" || cfg.serviceKey == "" {
		return nil, errors.New("docqa: Supabase URL and service key required (use WithSupabase)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	embedder := openaitr.NewEmbedder(&openaitr.EmbedderConfig{
		APIKey:     cfg.apiKey,
		BaseURL:    cfg.baseURL,
		Model:      cfg.embedModel,
		Dimensions: cfg.dimensions,
		Logger:     cfg.logger,
	})

	var store db.Store
	var pipelineEmbedder query.Embedder = embedder
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("docqa: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("docqa: cache not ready: %w", err)
		}
		store = s
		pipelineEmbedder = embcache.New(
			embedder, s, cfg.cacheTTL, metrics.EmbeddingCacheTotal, cfg.logger,
		)
	}

	retriever := supabase.New(&supabase.Config{
		BaseURL:    cfg.supabaseURL,
		ServiceKey: cfg.serviceKey,
		RPC:        cfg.rpc,
		Timeout:    cfg.rpcTimeout,
		Logger:     cfg.logger,
	})

	generator := openaitr.NewCompleter(&openaitr.CompleterConfig{
		APIKey:       cfg.apiKey,
		BaseURL:      cfg.baseURL,
		Model:        cfg.chatModel,
		SystemPrompt: cfg.systemPrompt,
		Logger:       cfg.logger,
	})

	svc := query.New(pipelineEmbedder, retriever, generator, cfg.logger).
		WithDimensions(cfg.dimensions).
		WithRetrieval(cfg.matchCount, cfg.source)

	return &Client{svc: svc, embedder: embedder, store: store}, nil
}

// Ask runs the full pipeline and returns the structured result.
func (c *Client) Ask(ctx context.Context, question string) Result {
	return toResult(c.svc.Ask(ctx, question))
}

// Answer runs the full pipeline and returns only the answer text.
// The text is never empty.
func (c *Client) Answer(ctx context.Context, question string) string {
	return c.svc.Answer(ctx, question)
}

// Ping checks provider connectivity by listing available models.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.embedder.HealthCheck(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

func toResult(r domain.Result) Result {
	res := Result{
		Text:         r.Text,
		Outcome:      Outcome(r.Outcome),
		Degradations: r.Degradations,
	}
	for _, d := range r.Sources {
		res.Sources = append(res.Sources, Source{
			Title:      d.Title,
			Content:    d.Content,
			Similarity: d.Similarity,
		})
	}
	return res
}
