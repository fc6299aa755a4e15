// Package chi exposes the query pipeline over HTTP.
//
// The HTTP layer is a thin collaborator around the pipeline: it validates
// the request shape and renders the structured result. All pipeline failure
// handling happens below it — the ask endpoint never returns a 5xx for a
// provider failure.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	healthuc "github.com/kailas-cloud/docqa/internal/usecase/health"
)

// Asker runs the question-answering pipeline.
type Asker interface {
	Ask(ctx context.Context, question string) domain.Result
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the API.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
)

// AskRequest is the POST /ask payload.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the POST /ask result.
type AskResponse struct {
	Answer       string         `json:"answer"`
	Outcome      domain.Outcome `json:"outcome"`
	Sources      []SourceRef    `json:"sources,omitempty"`
	Degradations []string       `json:"degradations,omitempty"`
}

// SourceRef points at a documentation chunk used to ground the answer.
type SourceRef struct {
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// Server handles the docqa HTTP API.
type Server struct {
	query  Asker
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(query Asker, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{query: query, health: health, logger: logger}
}

// Mount registers the API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/ask", s.handleAsk)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Question is required")
		return
	}

	result := s.query.Ask(r.Context(), question)

	sources := make([]SourceRef, 0, len(result.Sources))
	for _, d := range result.Sources {
		sources = append(sources, SourceRef{Title: d.Title, Similarity: d.Similarity})
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:       result.Text,
		Outcome:      result.Outcome,
		Sources:      sources,
		Degradations: result.Degradations,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
