package request

import (
	"fmt"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 500
)

// Request is a validated search query.
type Request struct {
	text    string
	filters filter.Expression
	boosts  boost.Vector
	limit   int
}

// New validates and normalizes search parameters. Empty text is allowed and
// yields no results. A zero limit means DefaultLimit; a limit above MaxLimit
// is a configuration error.
func New(text string, filters filter.Expression, boosts boost.Vector, limit int) (Request, error) {
	if len(text) > MaxQueryLength {
		return Request{}, domain.Configf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, domain.Configf("num_results must not be negative, got %d", limit)
	}
	if limit > MaxLimit {
		return Request{}, domain.Configf("num_results must be at most %d, got %d", MaxLimit, limit)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	return Request{text: text, filters: filters, boosts: boosts, limit: limit}, nil
}

// FromMaps builds a request from plain filter and boost mappings.
func FromMaps(text string, filters map[string]string, boosts map[string]float64, limit int) (Request, error) {
	f, err := filter.FromMap(filters)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	b, err := boost.New(boosts)
	if err != nil {
		return Request{}, err
	}
	return New(text, f, b, limit)
}

// Text returns the search query text.
func (r *Request) Text() string { return r.text }

// Filters returns the exact-match pre-filter.
func (r *Request) Filters() filter.Expression { return r.filters }

// Boosts returns the per-field boost weights.
func (r *Request) Boosts() boost.Vector { return r.boosts }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }

// WithText returns a copy of the request with a different query text.
func (r *Request) WithText(text string) Request {
	return Request{text: text, filters: r.filters, boosts: r.boosts, limit: r.limit}
}
