package search

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/db"
	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
)

func TestSearch_BuildsWeightedQuery(t *testing.T) {
	repo, ms := newTestRepo(t)
	repo.WithConstantFilter(mustFilter(t, map[string]string{"service": "Amazon Bedrock"}))

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "boostlab:faq:idx" {
			t.Errorf("index = %s", q.IndexName)
		}
		if !slices.Equal(q.Terms, []string{"agent", "create"}) {
			t.Errorf("terms = %v", q.Terms)
		}
		want := []db.WeightedField{
			{Name: "question", Weight: 3},
			{Name: "text", Weight: 1},
			{Name: "service__terms", Weight: 1},
		}
		if !slices.Equal(q.Fields, want) {
			t.Errorf("fields = %+v, want %+v", q.Fields, want)
		}
		wantFilters := []db.FieldFilter{
			{Field: "service", Value: "Amazon Bedrock", Tag: true},
			{Field: "section", Value: "Agents"},
		}
		if !slices.Equal(q.Filters, wantFilters) {
			t.Errorf("filters = %+v, want %+v", q.Filters, wantFilters)
		}
		if q.Limit != 5 {
			t.Errorf("limit = %d", q.Limit)
		}
		return &db.SearchResult{}, nil
	}

	req := mustRequest(t, "Create agent?", map[string]string{"section": "Agents"},
		map[string]float64{"question": 3, "section": 0}, 5)
	if _, err := repo.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.calls != 1 {
		t.Errorf("store calls = %d, want 1", ms.calls)
	}
}

func TestSearch_MixedCaseTagsScoreThroughTerms(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if !slices.Equal(q.Terms, []string{"bedrock", "pricing"}) {
			t.Errorf("terms = %v", q.Terms)
		}
		for _, f := range q.Fields {
			if f.Name == "service" {
				t.Errorf("keyword field scored on its case-sensitive TAG: %+v", f)
			}
		}
		if !slices.Contains(q.Fields, db.WeightedField{Name: "service__terms", Weight: 1.5}) {
			t.Errorf("fields = %+v, want service__terms weighted 1.5", q.Fields)
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{
			Key:    "boostlab:faq:doc:d1",
			Score:  1.5,
			Fields: map[string]string{"service": "Amazon Bedrock"},
		}}}, nil
	}

	req := mustRequest(t, "Bedrock pricing", nil, map[string]float64{"service": 1.5}, 5)
	res, err := repo.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].ID() != "d1" {
		t.Fatalf("results = %v", result.IDs(res))
	}
	doc := res[0].Document()
	if tags, _ := doc.Keywords("service"); !slices.Equal(tags, []string{"Amazon Bedrock"}) {
		t.Errorf("tags = %v", tags)
	}
}

func TestSearch_ParsesEntriesInEngineOrder(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "boostlab:faq:doc:d-2",
					Score: 7.5,
					Fields: map[string]string{
						"question": "How do agents work?",
						"service":  "Amazon Bedrock,Amazon SageMaker",
					},
				},
				{
					Key:    "boostlab:faq:doc:d-1",
					Score:  2.25,
					Fields: map[string]string{"text": "Agents call tools."},
				},
			},
		}, nil
	}

	res, err := repo.Search(context.Background(), mustRequest(t, "agents", nil, nil, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(result.IDs(res), []string{"d-2", "d-1"}) {
		t.Fatalf("ids = %v", result.IDs(res))
	}
	if res[0].Score() != 7.5 || res[0].Position() != 0 || res[1].Position() != 1 {
		t.Errorf("unexpected score/position: %+v", res)
	}
	doc := res[0].Document()
	tags, _ := doc.Keywords("service")
	if !slices.Equal(tags, []string{"Amazon Bedrock", "Amazon SageMaker"}) {
		t.Errorf("tags = %v", tags)
	}
	if q, _ := doc.Text("question"); q != "How do agents work?" {
		t.Errorf("question = %q", q)
	}
}

func TestSearch_EmptyQuerySkipsStore(t *testing.T) {
	repo, ms := newTestRepo(t)
	res, err := repo.Search(context.Background(), mustRequest(t, "  ...  ", nil, nil, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 || ms.calls != 0 {
		t.Errorf("expected no results and no store call, got %d results, %d calls", len(res), ms.calls)
	}
}

func TestSearch_AllWeightsZeroSkipsStore(t *testing.T) {
	repo, ms := newTestRepo(t)
	boosts := map[string]float64{"question": 0, "text": 0, "section": 0, "service": 0}
	res, err := repo.Search(context.Background(), mustRequest(t, "agents", nil, boosts, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 || ms.calls != 0 {
		t.Errorf("expected no results and no store call")
	}
}

func TestSearch_UnknownFilterField(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, err := repo.Search(context.Background(), mustRequest(t, "agents", map[string]string{"region": "eu"}, nil, 10))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if ms.calls != 0 {
		t.Error("store must not be called")
	}
}

func TestSearch_StoreErrors(t *testing.T) {
	repo, ms := newTestRepo(t)
	req := mustRequest(t, "agents", nil, nil, 10)

	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}
	_, err := repo.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrIndexNotFitted) {
		t.Errorf("missing index: expected ErrIndexNotFitted, got %v", err)
	}

	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection reset")}
	}
	_, err = repo.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrSearch) {
		t.Errorf("backend failure: expected ErrSearch, got %v", err)
	}
	if domain.IsConfiguration(err) {
		t.Error("backend failure must not be a configuration error")
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b,,c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := splitTags(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("splitTags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
