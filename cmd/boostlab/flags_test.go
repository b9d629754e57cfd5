package main

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
)

func TestParseBoosts(t *testing.T) {
	v, err := parseBoosts([]string{"title=2", " content = 0.5 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Weight("title") != 2 || v.Weight("content") != 0.5 {
		t.Errorf("boosts = %v", v)
	}

	for _, bad := range []string{"title", "=2", "title=abc", "title=-1"} {
		if _, err := parseBoosts([]string{bad}); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("parseBoosts(%q) = %v, want ErrConfiguration", bad, err)
		}
	}
}

func TestMergeBoosts(t *testing.T) {
	base := boost.MustNew(map[string]float64{"title": 1, "tags": 1.5})
	override := boost.MustNew(map[string]float64{"title": 3})

	got, err := mergeBoosts(base, override)
	if err != nil {
		t.Fatal(err)
	}
	want := boost.MustNew(map[string]float64{"title": 3, "tags": 1.5})
	if !got.Equal(want) {
		t.Errorf("merged = %v, want %v", got, want)
	}
}
