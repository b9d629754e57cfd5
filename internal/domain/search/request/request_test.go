package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("hello", filter.Expression{}, boost.Vector{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "hello" {
		t.Errorf("Text() = %q", r.Text())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if !r.Filters().IsEmpty() {
		t.Error("expected empty filters")
	}
	if r.Boosts().Weight("title") != boost.DefaultWeight {
		t.Error("expected default boost")
	}
}

func TestNew_EmptyTextAllowed(t *testing.T) {
	r, err := New("", filter.Expression{}, boost.Vector{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "" || r.Limit() != 5 {
		t.Errorf("got text=%q limit=%d", r.Text(), r.Limit())
	}
}

func TestNew_Limits(t *testing.T) {
	r, err := New("q", filter.Expression{}, boost.Vector{}, MaxLimit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
	if _, err := New("q", filter.Expression{}, boost.Vector{}, MaxLimit+1); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("limit above max: expected ErrConfiguration, got %v", err)
	}

	if _, err := New("q", filter.Expression{}, boost.Vector{}, -1); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("negative limit: expected ErrConfiguration, got %v", err)
	}
	long := strings.Repeat("x", MaxQueryLength+1)
	if _, err := New(long, filter.Expression{}, boost.Vector{}, 1); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("long query: expected ErrConfiguration, got %v", err)
	}
}

func TestFromMaps(t *testing.T) {
	r, err := FromMaps("agents",
		map[string]string{"service": "Amazon Bedrock"},
		map[string]float64{"title": 2},
		3,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Filters().Must()) != 1 || r.Boosts().Weight("title") != 2 {
		t.Errorf("unexpected request: %+v", r)
	}

	if _, err := FromMaps("q", nil, map[string]float64{"title": -1}, 1); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("negative boost: expected ErrConfiguration, got %v", err)
	}
	if _, err := FromMaps("q", map[string]string{"service": ""}, nil, 1); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("empty filter value: expected ErrConfiguration, got %v", err)
	}
}

func TestWithText(t *testing.T) {
	r, _ := FromMaps("first", nil, map[string]float64{"title": 3}, 7)
	c := r.WithText("second")
	if c.Text() != "second" || c.Limit() != 7 || c.Boosts().Weight("title") != 3 {
		t.Errorf("WithText lost parameters: %+v", c)
	}
	if r.Text() != "first" {
		t.Error("WithText must not modify the receiver")
	}
}
