// Package chi exposes the HTTP surface: health, search, item detail, and
// metrics, with domain errors mapped to status codes at this boundary.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/domain/query"
	healthuc "github.com/ikarus-cloud/furnish/internal/usecase/health"
	itemuc "github.com/ikarus-cloud/furnish/internal/usecase/item"
	searchuc "github.com/ikarus-cloud/furnish/internal/usecase/search"
)

// Error codes returned in response bodies.
const (
	codeInvalidInput     = "invalid_input"
	codeNotFound         = "not_found"
	codeEmbeddingError   = "embedding_provider_error"
	codeIndexUnavailable = "index_unavailable"
	codeInternalError    = "internal_error"
)

// errorResponse is the machine-readable error body. Raw provider errors,
// stack traces, and credentials never reach it.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the use case services to HTTP routes.
type Server struct {
	search        *searchuc.Service
	items         *itemuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	items *itemuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		items:  items,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput, true),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound, true),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway,
			codeEmbeddingError, false),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable,
			codeIndexUnavailable, false),
		// Dimension mismatch is a deployment defect: surfaced as a plain 500,
		// details stay in the logs.
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError,
			codeInternalError, false),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)
	r.Post("/search", s.handleSearch)
	r.Get("/item/{id}", s.handleItem)
	r.Handle("/metrics", promhttp.Handler())
}

// handleHealth is the liveness probe. It never touches a downstream provider.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report := s.health.Live()
	writeJSON(w, http.StatusOK, healthResponse{Status: string(report.Status)})
}

// handleReady reports per-dependency readiness: 200 when everything answers,
// 503 when anything is down.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := s.health.Ready(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// handleSearch runs the retrieval pipeline.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "invalid request body")
		return
	}

	q, err := query.New(req.Query, req.TopK, req.CandidateK, req.MustContain)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	cards, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]productCard, len(cards))
	for i, c := range cards {
		results[i] = cardToJSON(c)
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

// handleItem serves the product detail view.
func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailToJSON(detail))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler matching a single sentinel error.
// exposeMessage controls whether err.Error() (our own validation text) is
// shown or a generic message derived from the sentinel.
func sentinelHandler(sentinel error, status int, code string, exposeMessage bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if exposeMessage {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
