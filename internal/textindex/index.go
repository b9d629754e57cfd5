// Package textindex is an in-memory multi-field text index with weighted
// field scoring and exact-match pre-filtering.
//
// A field's match score is the sum, over distinct query terms, of the
// normalized term frequency count(term, field) / tokens(field). The document
// score is the boost-weighted sum of field scores in schema order.
package textindex

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/schema/field"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
)

type posting struct {
	doc   int
	count int
}

type fieldIndex struct {
	def      field.Field
	postings map[string][]posting
	lengths  []int
}

// Index is safe for concurrent Search calls. Fit takes the write lock.
type Index struct {
	mu     sync.RWMutex
	schema schema.Schema
	docs   []document.Document
	fields []fieldIndex
}

// New creates an unfitted index for the given schema.
func New(s schema.Schema) *Index {
	return &Index{schema: s}
}

// Schema returns the index schema.
func (idx *Index) Schema() schema.Schema { return idx.schema }

// Fit replaces the indexed corpus. Corpus order is the tie-break order.
func (idx *Index) Fit(docs []document.Document) error {
	if idx.schema.IsEmpty() {
		return domain.Configf("schema has no fields")
	}
	if len(docs) == 0 {
		return domain.Configf("cannot fit index on an empty corpus")
	}

	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		id := docs[i].ID()
		if id == "" {
			return domain.Configf("document at position %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return domain.Configf("duplicate document id %q", id)
		}
		seen[id] = struct{}{}
		if err := docs[i].Conform(idx.schema); err != nil {
			return err
		}
	}

	fields := make([]fieldIndex, 0, len(idx.schema.Fields()))
	for _, f := range idx.schema.Fields() {
		fields = append(fields, buildField(f, docs))
	}

	idx.mu.Lock()
	idx.docs = slices.Clone(docs)
	idx.fields = fields
	idx.mu.Unlock()
	return nil
}

func buildField(f field.Field, docs []document.Document) fieldIndex {
	fi := fieldIndex{
		def:      f,
		postings: make(map[string][]posting),
		lengths:  make([]int, len(docs)),
	}
	for i := range docs {
		tokens := Tokenize(fieldContent(&docs[i], f))
		fi.lengths[i] = len(tokens)
		if len(tokens) == 0 {
			continue
		}
		counts := make(map[string]int, len(tokens))
		for _, t := range tokens {
			counts[t]++
		}
		for t, c := range counts {
			fi.postings[t] = append(fi.postings[t], posting{doc: i, count: c})
		}
	}
	return fi
}

func fieldContent(d *document.Document, f field.Field) string {
	if f.IsKeyword() {
		tags, _ := d.Keywords(f.Name())
		return strings.Join(tags, " ")
	}
	v, _ := d.Text(f.Name())
	return v
}

// Len returns the number of fitted documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Documents returns a copy of the fitted corpus in order.
func (idx *Index) Documents() []document.Document {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Clone(idx.docs)
}

// Search ranks fitted documents against the request. An empty query yields
// no results; an unknown filter field is a configuration error. Boosts on
// fields outside the schema are ignored.
func (idx *Index) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.docs == nil {
		return nil, domain.ErrIndexNotFitted
	}

	allowed, err := idx.filterMask(req)
	if err != nil {
		return nil, err
	}

	terms := Terms(req.Text())
	if len(terms) == 0 {
		return []result.Result{}, nil
	}

	scores := make([]float64, len(idx.docs))
	fieldScores := make([]float64, len(idx.docs))
	touched := make([]int, 0, 64)
	boosts := req.Boosts()

	for fi := range idx.fields {
		f := &idx.fields[fi]
		weight := boosts.Weight(f.def.Name())
		if weight == 0 {
			continue
		}
		touched = touched[:0]
		for _, term := range terms {
			for _, p := range f.postings[term] {
				if allowed != nil && !allowed[p.doc] {
					continue
				}
				if fieldScores[p.doc] == 0 {
					touched = append(touched, p.doc)
				}
				fieldScores[p.doc] += float64(p.count) / float64(f.lengths[p.doc])
			}
		}
		for _, d := range touched {
			scores[d] += weight * fieldScores[d]
			fieldScores[d] = 0
		}
	}

	results := make([]result.Result, 0, req.Limit())
	for i, s := range scores {
		if s > 0 {
			results = append(results, result.New(idx.docs[i], s, i))
		}
	}
	slices.SortStableFunc(results, func(a, b result.Result) int {
		switch {
		case result.Less(&a, &b):
			return -1
		case result.Less(&b, &a):
			return 1
		}
		return 0
	})
	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}
	return results, nil
}

// filterMask returns nil when no filter applies.
func (idx *Index) filterMask(req *request.Request) ([]bool, error) {
	conds := req.Filters().Must()
	if len(conds) == 0 {
		return nil, nil
	}
	defs := make([]field.Field, len(conds))
	for i, c := range conds {
		f, ok := idx.schema.FieldByName(c.Key())
		if !ok {
			return nil, domain.Configf("unknown filter field %q", c.Key())
		}
		defs[i] = f
	}

	mask := make([]bool, len(idx.docs))
	for d := range idx.docs {
		ok := true
		for i, c := range conds {
			if !idx.docs[d].Matches(defs[i], c.Match()) {
				ok = false
				break
			}
		}
		mask[d] = ok
	}
	return mask, nil
}
