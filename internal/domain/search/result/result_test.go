package result

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/domain/document"
)

func TestResult_Accessors(t *testing.T) {
	doc := document.MustNew("doc-1", map[string]string{"title": "t"}, nil)
	r := New(doc, 0.75, 3)
	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Score() != 0.75 {
		t.Errorf("Score() = %v", r.Score())
	}
	if r.Position() != 3 {
		t.Errorf("Position() = %d", r.Position())
	}
	d := r.Document()
	if v, _ := d.Text("title"); v != "t" {
		t.Errorf("Document().Text(title) = %q", v)
	}
}

func TestLess(t *testing.T) {
	a := New(document.MustNew("a", nil, nil), 1.0, 5)
	b := New(document.MustNew("b", nil, nil), 0.5, 0)
	c := New(document.MustNew("c", nil, nil), 1.0, 2)

	results := []Result{a, b, c}
	slices.SortFunc(results, func(x, y Result) int {
		if Less(&x, &y) {
			return -1
		}
		if Less(&y, &x) {
			return 1
		}
		return 0
	})
	if got := IDs(results); !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Errorf("order = %v, want [c a b]", got)
	}
}
