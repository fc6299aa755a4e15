// Package domain holds the core types of the docqa pipeline.
package domain

// DefaultVectorDimensions matches text-embedding-3-small output.
const DefaultVectorDimensions = 1536

// NoResultsMessage is returned when retrieval produced no documents.
const NoResultsMessage = "I couldn't find any relevant information in the documentation."

// Document is one retrieved documentation chunk. The vector store is the
// source of truth; documents only live for the duration of a single query.
type Document struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// EmbeddingResult carries a vector plus provider-reported token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ZeroVector returns an all-zero vector of the given dimensionality.
// Used as the degraded fallback when the embedding provider fails.
func ZeroVector(dimensions int) []float32 {
	return make([]float32, dimensions)
}

// Outcome classifies how a pipeline run ended.
type Outcome string

const (
	// OutcomeAnswered is a grounded answer with no degradation.
	OutcomeAnswered Outcome = "answered"
	// OutcomeDegraded is an answer produced after at least one stage
	// fell back (zero-vector embedding, failed retrieval absorbed, ...).
	OutcomeDegraded Outcome = "degraded"
	// OutcomeNoResults means retrieval returned nothing; generation was skipped.
	OutcomeNoResults Outcome = "no_results"
	// OutcomeFailed means generation errored; Text carries the rendered error.
	OutcomeFailed Outcome = "failed"
)

// Result is the structured pipeline outcome. Text is always non-empty —
// the pipeline substitutes fallback text instead of propagating errors —
// while Outcome and Degradations let callers tell a real answer from a
// degraded or failed one without pattern-matching on the text.
type Result struct {
	Text         string     `json:"text"`
	Outcome      Outcome    `json:"outcome"`
	Sources      []Document `json:"sources,omitempty"`
	Degradations []string   `json:"degradations,omitempty"`
}

// Answered reports whether the result carries a real model answer
// (possibly produced from degraded inputs).
func (r Result) Answered() bool {
	return r.Outcome == OutcomeAnswered || r.Outcome == OutcomeDegraded
}
