// Package bleveindex is a search backend over an in-memory bleve index.
//
// Contract: each schema field with a positive boost contributes a match
// query boosted by its weight; the per-field queries are OR-ed. Caller
// filters and the optional constant filter are exact term filters ANDed with
// them. Scores are bleve's; ties fall back to corpus position.
package bleveindex

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
	"github.com/kailas-cloud/boostlab/internal/textindex"
)

// Index is safe for concurrent Search calls once fitted.
type Index struct {
	mu        sync.RWMutex
	schema    schema.Schema
	constant  filter.Expression
	index     bleve.Index
	docs      []document.Document
	positions map[string]int
}

// New creates an unfitted index.
func New(sc schema.Schema) *Index {
	return &Index{schema: sc}
}

// WithConstantFilter restricts every query to documents matching f.
func (i *Index) WithConstantFilter(f filter.Expression) *Index {
	i.constant = f
	return i
}

// Fit indexes the corpus into a fresh memory-only bleve index, replacing the
// previous one.
func (i *Index) Fit(docs []document.Document) error {
	if len(docs) == 0 {
		return domain.Configf("cannot fit index on an empty corpus")
	}
	for _, c := range i.constant.Must() {
		if _, ok := i.schema.FieldByName(c.Key()); !ok {
			return domain.Configf("unknown constant filter field %q", c.Key())
		}
	}

	positions := make(map[string]int, len(docs))
	for p := range docs {
		id := docs[p].ID()
		if id == "" {
			return domain.Configf("document at position %d has no id", p)
		}
		if _, dup := positions[id]; dup {
			return domain.Configf("duplicate document id %q", id)
		}
		positions[id] = p
		if err := docs[p].Conform(i.schema); err != nil {
			return err
		}
	}

	im, err := buildMapping(i.schema)
	if err != nil {
		return err
	}
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := idx.NewBatch()
	for p := range docs {
		d := &docs[p]
		if err := batch.Index(d.ID(), toBleveDoc(d.TextFields(), d.KeywordFields(), i.schema, p)); err != nil {
			_ = idx.Close()
			return fmt.Errorf("failed to index document %s: %w", d.ID(), err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	i.mu.Lock()
	old := i.index
	i.index = idx
	i.docs = slices.Clone(docs)
	i.positions = positions
	i.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Len returns the number of fitted documents.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Close releases the underlying bleve index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.index == nil {
		return nil
	}
	err := i.index.Close()
	i.index = nil
	i.docs = nil
	i.positions = nil
	return err
}

// Search implements usecase/search.Backend.
func (i *Index) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.index == nil {
		return nil, domain.ErrIndexNotFitted
	}

	filters, err := i.buildFilters(req.Filters())
	if err != nil {
		return nil, err
	}

	if len(textindex.Terms(req.Text())) == 0 {
		return []result.Result{}, nil
	}

	boosts := req.Boosts()
	matches := make([]query.Query, 0, len(i.schema.Fields()))
	for _, f := range i.schema.Fields() {
		w := boosts.Weight(f.Name())
		if w == 0 {
			continue
		}
		mq := bleve.NewMatchQuery(req.Text())
		mq.SetField(scoreField(f))
		mq.SetBoost(w)
		matches = append(matches, mq)
	}
	if len(matches) == 0 {
		return []result.Result{}, nil
	}

	var q query.Query = bleve.NewDisjunctionQuery(matches...)
	if len(filters) > 0 {
		q = bleve.NewConjunctionQuery(append(filters, q)...)
	}

	sr := bleve.NewSearchRequestOptions(q, req.Limit(), 0, false)
	sr.SortBy([]string{"-_score", positionField})

	res, err := i.index.SearchInContext(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("%w: bleve: %w", domain.ErrSearch, err)
	}

	results := make([]result.Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		p, ok := i.positions[hit.ID]
		if !ok || hit.Score <= 0 {
			continue
		}
		results = append(results, result.New(i.docs[p], hit.Score, p))
	}
	return results, nil
}

func (i *Index) buildFilters(caller filter.Expression) ([]query.Query, error) {
	conds := i.constant.And(caller).Must()
	out := make([]query.Query, 0, len(conds))
	for _, c := range conds {
		f, ok := i.schema.FieldByName(c.Key())
		if !ok {
			return nil, domain.Configf("unknown filter field %q", c.Key())
		}
		tq := bleve.NewTermQuery(c.Match())
		tq.SetField(filterField(f))
		out = append(out, tq)
	}
	return out, nil
}
