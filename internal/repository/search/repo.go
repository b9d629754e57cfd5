package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/boostlab/internal/db"
	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/search/filter"
	"github.com/kailas-cloud/boostlab/internal/domain/search/request"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
	"github.com/kailas-cloud/boostlab/internal/textindex"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo runs weighted multi-field queries against a Redis FT index.
//
// Contract: per-field boosts become $weight query attributes and keyword
// fields are scored through their tokenized companion. Zero-weight fields are
// left out of the query, and the constant filter (if any) is ANDed with the
// caller's filters on every call. Scores are the engine's.
type Repo struct {
	store      store
	collection string
	schema     schema.Schema
	constant   filter.Expression
}

// New creates a search repository over one collection.
func New(s store, collection string, sc schema.Schema) *Repo {
	return &Repo{store: s, collection: collection, schema: sc}
}

// WithConstantFilter restricts every query to documents matching f.
func (r *Repo) WithConstantFilter(f filter.Expression) *Repo {
	r.constant = f
	return r
}

// ConstantFilter returns the filter ANDed into every query.
func (r *Repo) ConstantFilter() filter.Expression { return r.constant }

// Search implements usecase/search.Backend.
func (r *Repo) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	filters, err := r.buildFilters(req.Filters())
	if err != nil {
		return nil, err
	}

	terms := textindex.Terms(req.Text())
	if len(terms) == 0 {
		return []result.Result{}, nil
	}

	boosts := req.Boosts()
	fields := make([]db.WeightedField, 0, len(r.schema.Fields()))
	for _, f := range r.schema.Fields() {
		w := boosts.Weight(f.Name())
		if w == 0 {
			continue
		}
		name := f.Name()
		if f.IsKeyword() {
			name = domain.TermsField(name)
		}
		fields = append(fields, db.WeightedField{Name: name, Weight: w})
	}
	if len(fields) == 0 {
		return []result.Result{}, nil
	}

	q := &db.TextQuery{
		IndexName:    domain.IndexName(r.collection),
		Terms:        terms,
		Fields:       fields,
		Filters:      filters,
		Limit:        req.Limit(),
		ReturnFields: r.schema.Names(),
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: collection %s", domain.ErrIndexNotFitted, r.collection)
		}
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrSearch, r.collection, err)
	}

	return r.parseResults(sr), nil
}

func (r *Repo) buildFilters(caller filter.Expression) ([]db.FieldFilter, error) {
	conds := r.constant.And(caller).Must()
	out := make([]db.FieldFilter, 0, len(conds))
	for _, c := range conds {
		f, ok := r.schema.FieldByName(c.Key())
		if !ok {
			return nil, domain.Configf("unknown filter field %q", c.Key())
		}
		out = append(out, db.FieldFilter{Field: c.Key(), Value: c.Match(), Tag: f.IsKeyword()})
	}
	return out, nil
}

// parseResults converts db.SearchResult into []result.Result in engine order.
func (r *Repo) parseResults(sr *db.SearchResult) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}
	}

	prefix := domain.DocPrefix(r.collection)
	results := make([]result.Result, 0, len(sr.Entries))
	for i, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		results = append(results, result.New(r.hydrate(id, entry.Fields), entry.Score, i))
	}
	return results
}

// hydrate rebuilds a document from flat hash fields; keyword tags are
// comma-separated.
func (r *Repo) hydrate(id string, fields map[string]string) domdoc.Document {
	text := make(map[string]string)
	keywords := make(map[string][]string)
	for _, f := range r.schema.Fields() {
		v, ok := fields[f.Name()]
		if !ok {
			continue
		}
		if f.IsKeyword() {
			keywords[f.Name()] = splitTags(v)
		} else {
			text[f.Name()] = v
		}
	}
	return domdoc.Reconstruct(id, text, keywords)
}

func splitTags(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
