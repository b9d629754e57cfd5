package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/db"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchTextFn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	calls        int
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	m.calls++
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func testSchema() schema.Schema {
	return schema.MustFromNames([]string{"question", "text", "section"}, []string{"service"})
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "faq", testSchema()), ms
}

func mustRequest(t *testing.T, text string, filters map[string]string, boosts map[string]float64, k int) *request.Request {
	t.Helper()
	req, err := request.FromMaps(text, filters, boosts, k)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &req
}

func mustFilter(t *testing.T, m map[string]string) filter.Expression {
	t.Helper()
	f, err := filter.FromMap(m)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return f
}
