package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
	"github.com/kailas-cloud/boostlab/internal/metrics"
)

// Request outcome labels.
const (
	statusOK       = "ok"
	statusInvalid  = "invalid"
	statusDegraded = "degraded"
)

// Service guards a Backend: configuration errors are surfaced, backend
// failures are logged, counted and degraded to an empty result list.
type Service struct {
	backend Backend
	name    string
	schema  schema.Schema
	logger  *zap.Logger
}

// New creates a search service. name labels logs and metrics.
func New(backend Backend, name string, sc schema.Schema) *Service {
	return &Service{backend: backend, name: name, schema: sc, logger: zap.NewNop()}
}

// WithLogger sets the logger used for degraded searches.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Name returns the backend label.
func (s *Service) Name() string { return s.name }

// Schema returns the schema requests are validated against.
func (s *Service) Schema() schema.Schema { return s.schema }

// Search validates filters against the schema and runs the backend.
// Context cancellation is returned as is.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if err := validateFilters(req.Filters(), s.schema); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(s.name, statusInvalid).Inc()
		return nil, err
	}

	start := time.Now()
	results, err := s.backend.Search(ctx, req)
	metrics.SearchDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.SearchRequestsTotal.WithLabelValues(s.name, statusOK).Inc()
		return results, nil
	}

	if domain.IsConfiguration(err) {
		metrics.SearchRequestsTotal.WithLabelValues(s.name, statusInvalid).Inc()
		return nil, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	s.logger.Warn("Search failed, returning empty result",
		zap.String("backend", s.name),
		zap.String("query", req.Text()),
		zap.Error(err),
	)
	metrics.SearchErrorsTotal.WithLabelValues(s.name).Inc()
	metrics.SearchRequestsTotal.WithLabelValues(s.name, statusDegraded).Inc()
	return []result.Result{}, nil
}

// Bind returns a query-only search function with fixed filters, boosts and
// limit, the shape the evaluation harness consumes.
func (s *Service) Bind(
	filters filter.Expression, boosts boost.Vector, limit int,
) (func(ctx context.Context, query string) ([]result.Result, error), error) {
	base, err := request.New("", filters, boosts, limit)
	if err != nil {
		return nil, err
	}
	if err := validateFilters(filters, s.schema); err != nil {
		return nil, err
	}
	return func(ctx context.Context, query string) ([]result.Result, error) {
		req := base.WithText(query)
		return s.Search(ctx, &req)
	}, nil
}

func validateFilters(expr filter.Expression, sc schema.Schema) error {
	for _, c := range expr.Must() {
		if _, ok := sc.FieldByName(c.Key()); !ok {
			return domain.Configf("unknown filter field %q", c.Key())
		}
	}
	return nil
}
