package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/boostlab/internal/logger"
	"github.com/kailas-cloud/boostlab/internal/metrics"
	healthuc "github.com/kailas-cloud/boostlab/internal/usecase/health"
	searchuc "github.com/kailas-cloud/boostlab/internal/usecase/search"
)

// maxBodyBytes caps POST /search bodies.
const maxBodyBytes = 1 << 20

// ProfileReader resolves stored boost profiles by name.
type ProfileReader interface {
	Boosts(ctx context.Context, name string) (boost.Vector, error)
}

// Server serves the read-only retrieval API.
type Server struct {
	search   *searchuc.Service
	health   *healthuc.Service
	profiles ProfileReader
	defaults boost.Vector
	limit    int
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search: search,
		health: health,
		limit:  request.DefaultLimit,
		logger: logger,
	}
}

// WithProfiles enables the "profile" field of search requests.
func (s *Server) WithProfiles(p ProfileReader) *Server {
	s.profiles = p
	return s
}

// WithDefaults sets the boosts and limit used when a request omits them.
func (s *Server) WithDefaults(boosts boost.Vector, limit int) *Server {
	s.defaults = boosts
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// Routes builds the chi router with the middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Post("/search", s.Search)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := s.buildRequest(r.Context(), &body)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	results, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToItem(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Backend: s.search.Name(),
		Items:   items,
		Total:   len(items),
	})
}

func (s *Server) buildRequest(ctx context.Context, body *SearchRequest) (request.Request, error) {
	filters, err := filter.FromMap(body.Filters)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	boosts := s.defaults
	switch {
	case len(body.Boosts) > 0:
		boosts, err = boost.New(body.Boosts)
		if err != nil {
			return request.Request{}, err
		}
	case body.Profile != "":
		if s.profiles == nil {
			return request.Request{}, domain.Configf("boost profiles are not available")
		}
		boosts, err = s.profiles.Boosts(ctx, body.Profile)
		if err != nil {
			return request.Request{}, err
		}
	}

	limit := s.limit
	if body.Limit != nil {
		limit = *body.Limit
	}
	return request.New(body.Query, filters, boosts, limit)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
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

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(ctx)
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		log.Warn("domain error", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		log.Warn("domain error", zap.Error(err))
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("request canceled", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, codeInternal, "request canceled")
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
