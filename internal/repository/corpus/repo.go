package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/boostlab/internal/db"
	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
)

// DefaultBatchSize is the number of hashes written per pipelined round-trip.
const DefaultBatchSize = 500

// store is the consumer interface for corpus management (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo manages the FT index and document hashes of one collection.
type Repo struct {
	store      store
	collection string
	schema     schema.Schema
	batchSize  int
}

// New creates a corpus repository.
func New(s store, collection string, sc schema.Schema) *Repo {
	return &Repo{store: s, collection: collection, schema: sc, batchSize: DefaultBatchSize}
}

// WithBatchSize overrides the ingest batch size.
func (r *Repo) WithBatchSize(n int) *Repo {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Collection returns the collection name.
func (r *Repo) Collection() string { return r.collection }

// CreateIndex creates the FT index: TEXT for text fields, case-sensitive
// TAG for keyword fields.
func (r *Repo) CreateIndex(ctx context.Context) error {
	def, err := buildIndex(r.collection, r.schema)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
		return fmt.Errorf("%w: create index %s: %w", domain.ErrSearch, def.Name, err)
	}
	return nil
}

// DropIndex removes the FT index and its documents. A missing index is not an error.
func (r *Repo) DropIndex(ctx context.Context) error {
	name := domain.IndexName(r.collection)
	if err := r.store.DropIndex(ctx, name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}

// Recreate drops the index (if any) and creates it again.
func (r *Repo) Recreate(ctx context.Context) error {
	if err := r.DropIndex(ctx); err != nil {
		return err
	}
	return r.CreateIndex(ctx)
}

// Exists reports whether the collection's FT index exists.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	name := domain.IndexName(r.collection)
	ok, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", name, err)
	}
	return ok, nil
}

// Ingest writes documents as hashes in pipelined batches. Documents are
// validated up front so a bad corpus writes nothing. Returns the number stored.
func (r *Repo) Ingest(ctx context.Context, docs []domdoc.Document) (int, error) {
	if len(docs) == 0 {
		return 0, domain.Configf("cannot ingest an empty corpus")
	}

	items := make([]db.HashSetItem, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		doc := &docs[i]
		if _, dup := seen[doc.ID()]; dup {
			return 0, domain.Configf("duplicate document id %q", doc.ID())
		}
		seen[doc.ID()] = struct{}{}
		if err := doc.Conform(r.schema); err != nil {
			return 0, err
		}
		fields, err := buildHashFields(doc, r.schema)
		if err != nil {
			return 0, err
		}
		items = append(items, db.HashSetItem{Key: domain.DocKey(r.collection, doc.ID()), Fields: fields})
	}

	stored := 0
	for start := 0; start < len(items); start += r.batchSize {
		end := min(start+r.batchSize, len(items))
		if err := r.store.HSetMulti(ctx, items[start:end]); err != nil {
			return stored, fmt.Errorf("ingest %s: %w", r.collection, err)
		}
		stored = end
	}
	return stored, nil
}

// buildIndex creates an IndexDefinition from the schema.
func buildIndex(collection string, sc schema.Schema) (*db.IndexDefinition, error) {
	b := db.NewIndex(domain.IndexName(collection)).Prefix(domain.DocPrefix(collection))
	for _, f := range sc.Fields() {
		if f.IsKeyword() {
			b.TagWithOpts(f.Name(), tagSeparator, true)
			b.Text(domain.TermsField(f.Name()))
		} else {
			b.Text(f.Name())
		}
	}
	def, err := b.Build()
	if err != nil {
		return nil, domain.Configf("index definition: %v", err)
	}
	return def, nil
}
