package corpus

import (
	"context"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/db"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string, deleteDocs bool) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)

	batches [][]db.HashSetItem
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	m.batches = append(m.batches, items)
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name, deleteDocs)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func testSchema() schema.Schema {
	return schema.MustFromNames([]string{"question", "text"}, []string{"service"})
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "faq", testSchema()), ms
}

func testDoc(id string) domdoc.Document {
	return domdoc.MustNew(id,
		map[string]string{"question": "q " + id, "text": "t " + id},
		map[string][]string{"service": {"Amazon Bedrock", "Amazon S3"}})
}
