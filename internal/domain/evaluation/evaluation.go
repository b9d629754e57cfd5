// Package evaluation holds the ranking-quality metrics used to score a
// search configuration against labeled queries.
package evaluation

import (
	"fmt"
	"math"
)

// GroundTruth is a labeled query: the document that should be retrieved.
type GroundTruth struct {
	Query      string `json:"question"`
	DocumentID string `json:"document"`
}

// Validate checks that the record carries a target document.
func (g GroundTruth) Validate() error {
	if g.DocumentID == "" {
		return fmt.Errorf("ground truth document id is required")
	}
	return nil
}

// Relevance marks, for each returned id in order, whether it equals target.
func Relevance(target string, ids []string) []bool {
	rel := make([]bool, len(ids))
	for i, id := range ids {
		rel[i] = id == target
	}
	return rel
}

// HitRate is the fraction of rows that contain at least one relevant result.
// An empty input yields 0.
func HitRate(relevance [][]bool) float64 {
	if len(relevance) == 0 {
		return 0
	}
	hits := 0
	for _, row := range relevance {
		for _, r := range row {
			if r {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(relevance))
}

// MRR is the mean over rows of 1/(rank+1) for the first relevant position,
// counting 0 for rows without one. An empty input yields 0.
func MRR(relevance [][]bool) float64 {
	if len(relevance) == 0 {
		return 0
	}
	total := 0.0
	for _, row := range relevance {
		for rank, r := range row {
			if r {
				total += 1.0 / float64(rank+1)
				break
			}
		}
	}
	return total / float64(len(relevance))
}

// Result is the outcome of an evaluation run.
type Result struct {
	HitRate float64 `json:"hit_rate"`
	MRR     float64 `json:"mrr"`
	Records int     `json:"records"`
}

// NewResult computes both metrics from a relevance matrix.
func NewResult(relevance [][]bool) Result {
	return Result{
		HitRate: HitRate(relevance),
		MRR:     MRR(relevance),
		Records: len(relevance),
	}
}

// Valid reports whether both metrics are finite and inside [0, 1].
func (r Result) Valid() bool {
	in := func(v float64) bool { return !math.IsNaN(v) && v >= 0 && v <= 1 }
	return in(r.HitRate) && in(r.MRR) && r.MRR <= r.HitRate
}
