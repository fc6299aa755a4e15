package docqa

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey       string
	baseURL      string
	embedModel   string
	dimensions   int
	chatModel    string
	systemPrompt string

	supabaseURL string
	serviceKey  string
	rpc         string
	matchCount  int
	source      string
	rpcTimeout  time.Duration

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	logger *zap.Logger
}

// WithOpenAI sets the API key for the embedding and chat-completion provider.
// Required.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
	})
}

// WithBaseURL points the provider client at an OpenAI-compatible endpoint.
// Default: the official OpenAI API.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithSupabase sets the vector store project URL and service key. Required.
func WithSupabase(url, serviceKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.supabaseURL = url
		c.serviceKey = serviceKey
	})
}

// WithRPC sets the PostgREST match function name.
// Default: match_site_pages.
func WithRPC(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rpc = name
	})
}

// WithSource filters retrieval to one documentation set.
// Default: ultravox_docs.
func WithSource(source string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = source
	})
}

// WithMatchCount sets how many documents retrieval requests. Default: 5.
func WithMatchCount(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.matchCount = n
	})
}

// WithEmbeddingModel sets the embedding model and its vector dimensionality.
// Defaults: text-embedding-3-small, 1536.
func WithEmbeddingModel(model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedModel = model
		c.dimensions = dimensions
	})
}

// WithChatModel sets the answer-generation model. Default: gpt-4o-mini.
func WithChatModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatModel = model
	})
}

// WithSystemPrompt overrides the generation system instruction.
func WithSystemPrompt(prompt string) Option {
	return optionFunc(func(c *clientConfig) {
		c.systemPrompt = prompt
	})
}

// WithRedisCache caches embeddings in a Redis instance so repeated questions
// skip the provider call. ttl <= 0 stores entries without expiration.
// Disabled by default.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithStoreTimeout bounds one vector store round trip. Default: 10s.
func WithStoreTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.rpcTimeout = d
	})
}

// WithLogger enables structured logging for pipeline operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
