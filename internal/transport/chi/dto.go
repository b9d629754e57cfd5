package chi

import (
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeInternal         = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query   string             `json:"query"`
	Filters map[string]string  `json:"filters,omitempty"`
	Boosts  map[string]float64 `json:"boosts,omitempty"`
	// Limit defaults to the server's search.limit; 0 means 10, above 500 is rejected.
	Limit *int `json:"limit,omitempty"`
	// Profile names a stored boost profile used when Boosts is empty.
	Profile string `json:"profile,omitempty"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	Backend string             `json:"backend"`
	Items   []SearchResultItem `json:"items"`
	Total   int                `json:"total"`
}

// SearchResultItem is one ranked document.
type SearchResultItem struct {
	ID       string              `json:"id"`
	Score    float64             `json:"score"`
	Position int                 `json:"position"`
	Text     map[string]string   `json:"text,omitempty"`
	Keywords map[string][]string `json:"keywords,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResultToItem(r *result.Result) SearchResultItem {
	doc := r.Document()
	return SearchResultItem{
		ID:       r.ID(),
		Score:    r.Score(),
		Position: r.Position(),
		Text:     doc.TextFields(),
		Keywords: doc.KeywordFields(),
	}
}
