// Package supabase calls the vector store's match-documents RPC.
//
// The store's indexing and similarity implementation is opaque: retrieval is
// a single PostgREST function call that takes a query embedding and returns
// the top matches for one documentation source.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

const errBodyLimit = 512

// Client invokes a PostgREST RPC on a Supabase project.
type Client struct {
	httpClient *http.Client
	rpcURL     string
	serviceKey string
	logger     *zap.Logger
}

// Config holds vector store connection settings.
type Config struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co.
	BaseURL string
	// ServiceKey authenticates the RPC (sent as apikey + bearer token).
	ServiceKey string
	// RPC is the PostgREST function name, e.g. match_site_pages.
	RPC string
	// Timeout bounds one RPC round trip.
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a vector store RPC client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	base := strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		rpcURL:     fmt.Sprintf("%s/rest/v1/rpc/%s", base, cfg.RPC),
		serviceKey: cfg.ServiceKey,
		logger:     cfg.Logger,
	}
}

// matchRequest is the RPC payload.
type matchRequest struct {
	QueryEmbedding []float32   `json:"query_embedding"`
	MatchCount     int         `json:"match_count"`
	Filter         matchFilter `json:"filter"`
}

type matchFilter struct {
	Source string `json:"source"`
}

// matchRecord is one row of the RPC response.
type matchRecord struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Retrieve returns up to matchCount documents from the given source, ordered
// by descending similarity as the store returns them.
func (c *Client) Retrieve(
	ctx context.Context, vector []float32, matchCount int, source string,
) ([]domain.Document, error) {
	body, err := json.Marshal(matchRequest{
		QueryEmbedding: vector,
		MatchCount:     matchCount,
		Filter:         matchFilter{Source: source},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	start := time.Now()

	resp, err := c.httpClient.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageRetrieval, "error").Inc()
		return nil, fmt.Errorf("rpc call: %v: %w", err, domain.ErrVectorStoreError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageRetrieval, "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("rpc status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(snippet)), domain.ErrVectorStoreError)
	}

	var records []matchRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageRetrieval, "error").Inc()
		return nil, fmt.Errorf("decode rpc response: %v: %w", err, domain.ErrVectorStoreError)
	}

	metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageRetrieval, "success").Inc()
	metrics.PipelineStageDuration.WithLabelValues(metrics.StageRetrieval).Observe(duration.Seconds())

	c.logger.Debug("match documents",
		zap.String("source", source),
		zap.Int("match_count", matchCount),
		zap.Int("returned", len(records)),
		zap.Duration("latency", duration),
	)

	docs := make([]domain.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, domain.Document{
			Title:      r.Title,
			Content:    r.Content,
			Similarity: r.Similarity,
		})
	}
	return docs, nil
}
