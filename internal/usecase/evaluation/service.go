package evaluation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/boostlab/internal/domain"
	domeval "github.com/kailas-cloud/boostlab/internal/domain/evaluation"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
	"github.com/kailas-cloud/boostlab/internal/metrics"
)

// SearchFunc is a search configuration bound to everything but the query text.
type SearchFunc func(ctx context.Context, query string) ([]result.Result, error)

// Result is the outcome of one evaluation pass.
type Result = domeval.Result

// Record is one labeled query.
type Record = domeval.GroundTruth

// Service scores search functions against ground truth.
// It keeps no state between calls.
type Service struct {
	workers int
}

// New creates a sequential evaluation service.
func New() *Service {
	return &Service{workers: 1}
}

// WithWorkers sets how many records are scored concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Workers returns the configured parallelism.
func (s *Service) Workers() int { return s.workers }

// Evaluate runs fn for every record and aggregates hit-rate and MRR.
// The first search error aborts the pass and is returned.
func (s *Service) Evaluate(ctx context.Context, records []Record, fn SearchFunc) (Result, error) {
	if len(records) == 0 {
		return Result{}, domain.Configf("ground truth is empty")
	}
	if fn == nil {
		return Result{}, domain.Configf("search function is required")
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return Result{}, domain.Configf("record %d: %v", i, err)
		}
	}

	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	// Indexed by record so aggregation does not depend on completion order.
	relevance := make([][]bool, len(records))

	score := func(ctx context.Context, i int) (err error) {
		// Worker goroutines are outside the caller's recover.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("record %d %q: panic: %v", i, records[i].Query, r)
			}
		}()
		if err := ctx.Err(); err != nil {
			return err
		}
		hits, err := fn(ctx, records[i].Query)
		if err != nil {
			return fmt.Errorf("record %d %q: %w", i, records[i].Query, err)
		}
		relevance[i] = domeval.Relevance(records[i].DocumentID, result.IDs(hits))
		metrics.EvaluationRecordsTotal.Inc()
		return nil
	}

	if s.workers <= 1 {
		for i := range records {
			if err := score(ctx, i); err != nil {
				return Result{}, err
			}
		}
		return domeval.NewResult(relevance), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range records {
		g.Go(func() error {
			return score(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return domeval.NewResult(relevance), nil
}

// Split divides records into a validation set of the first n records and a
// test set with the rest. n is clamped to [0, len(records)].
func Split(records []Record, n int) (validation, test []Record) {
	n = max(0, min(n, len(records)))
	return records[:n:n], records[n:]
}
