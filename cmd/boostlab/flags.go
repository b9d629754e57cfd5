package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
)

// parseBoosts parses field=weight pairs.
func parseBoosts(pairs []string) (boost.Vector, error) {
	if len(pairs) == 0 {
		return boost.Vector{}, nil
	}
	weights := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return boost.Vector{}, domain.Configf("boost %q must look like field=weight", p)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return boost.Vector{}, domain.Configf("boost %q: %v", p, err)
		}
		weights[name] = w
	}
	return boost.New(weights)
}

// mergeBoosts overlays explicit weights on top of base.
func mergeBoosts(base, override boost.Vector) (boost.Vector, error) {
	merged := base.Map()
	for k, w := range override.Map() {
		merged[k] = w
	}
	return boost.New(merged)
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
