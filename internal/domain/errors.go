package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank question.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a chat-completion provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrVectorStoreError signals a vector store RPC failure.
	ErrVectorStoreError = errors.New("vector store error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
