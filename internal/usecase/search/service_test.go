package search

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
	"github.com/kailas-cloud/boostlab/internal/metrics"
)

// --- Mocks ---

type mockBackend struct {
	results []result.Result
	err     error
	calls   int
	lastReq request.Request
}

func (m *mockBackend) Search(_ context.Context, req *request.Request) ([]result.Result, error) {
	m.calls++
	m.lastReq = *req
	return m.results, m.err
}

func testSchema() schema.Schema {
	return schema.MustFromNames([]string{"question", "text"}, []string{"service"})
}

func mustRequest(t *testing.T, text string, filters map[string]string) *request.Request {
	t.Helper()
	req, err := request.FromMaps(text, filters, nil, 10)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &req
}

func hit(id string, score float64, pos int) result.Result {
	return result.New(domdoc.MustNew(id, nil, nil), score, pos)
}

// --- Tests ---

func TestSearch_PassesThrough(t *testing.T) {
	backend := &mockBackend{results: []result.Result{hit("a", 2, 0), hit("b", 1, 1)}}
	svc := New(backend, "passthrough", testSchema())

	res, err := svc.Search(context.Background(), mustRequest(t, "q", map[string]string{"service": "S3"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(result.IDs(res), []string{"a", "b"}) {
		t.Errorf("ids = %v", result.IDs(res))
	}
	if v := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("passthrough", "ok")); v != 1 {
		t.Errorf("ok counter = %f, want 1", v)
	}
}

func TestSearch_UnknownFilterFieldSurfaced(t *testing.T) {
	backend := &mockBackend{}
	svc := New(backend, "unknown-filter", testSchema())

	_, err := svc.Search(context.Background(), mustRequest(t, "q", map[string]string{"region": "eu"}))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("backend must not be called for an invalid request")
	}
}

func TestSearch_BackendConfigErrorSurfaced(t *testing.T) {
	backend := &mockBackend{err: domain.ErrIndexNotFitted}
	svc := New(backend, "config-err", testSchema())

	_, err := svc.Search(context.Background(), mustRequest(t, "q", nil))
	if !errors.Is(err, domain.ErrIndexNotFitted) {
		t.Fatalf("expected ErrIndexNotFitted, got %v", err)
	}
	if v := testutil.ToFloat64(metrics.SearchErrorsTotal.WithLabelValues("config-err")); v != 0 {
		t.Errorf("configuration errors must not count as search errors, got %f", v)
	}
}

func TestSearch_BackendFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	backend := &mockBackend{err: errors.New("connection refused")}
	svc := New(backend, "degrade", testSchema()).WithLogger(zap.New(core))

	res, err := svc.Search(context.Background(), mustRequest(t, "how to", nil))
	if err != nil {
		t.Fatalf("expected degraded result, got error %v", err)
	}
	if res == nil || len(res) != 0 {
		t.Errorf("expected empty non-nil result, got %v", res)
	}
	if v := testutil.ToFloat64(metrics.SearchErrorsTotal.WithLabelValues("degrade")); v != 1 {
		t.Errorf("search errors = %f, want 1", v)
	}
	entries := logs.FilterMessage("Search failed, returning empty result").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["backend"] != "degrade" {
		t.Errorf("log fields = %v", entries[0].ContextMap())
	}
}

func TestSearch_ContextErrorReturned(t *testing.T) {
	backend := &mockBackend{err: context.Canceled}
	svc := New(backend, "canceled", testSchema())
	_, err := svc.Search(context.Background(), mustRequest(t, "q", nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBind(t *testing.T) {
	backend := &mockBackend{results: []result.Result{hit("a", 1, 0)}}
	svc := New(backend, "bind", testSchema())

	f, err := filter.FromMap(map[string]string{"service": "Amazon Bedrock"})
	if err != nil {
		t.Fatal(err)
	}
	fn, err := svc.Bind(f, boost.MustNew(map[string]float64{"question": 3}), 5)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	res, err := fn(context.Background(), "create agent")
	if err != nil || len(res) != 1 {
		t.Fatalf("fn() = %v, %v", res, err)
	}
	if backend.lastReq.Text() != "create agent" || backend.lastReq.Limit() != 5 {
		t.Errorf("request = %+v", backend.lastReq)
	}
	if backend.lastReq.Boosts().Weight("question") != 3 {
		t.Error("boost not forwarded")
	}
	if len(backend.lastReq.Filters().Must()) != 1 {
		t.Error("filter not forwarded")
	}

	bad, _ := filter.FromMap(map[string]string{"region": "eu"})
	if _, err := svc.Bind(bad, boost.Vector{}, 5); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for unknown filter, got %v", err)
	}
}
