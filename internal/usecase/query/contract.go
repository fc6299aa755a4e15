package query

import (
	"context"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever returns the top-matching documents for a query vector,
// filtered to one documentation source.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, matchCount int, source string) ([]domain.Document, error)
}

// Generator synthesizes an answer from a question and assembled context.
type Generator interface {
	Generate(ctx context.Context, query, docContext string) (string, error)
}
