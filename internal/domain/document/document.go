package document

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/schema"
	"github.com/kailas-cloud/boostlab/internal/domain/schema/field"
)

// MaxIDLength is the maximum document identifier length.
const MaxIDLength = 256

// Document is a retrievable record (immutable value object).
type Document struct {
	id       string
	text     map[string]string
	keywords map[string][]string
}

// New validates and creates a Document. Schema conformance is checked when
// the document is fitted into an index.
func New(id string, text map[string]string, keywords map[string][]string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	return Document{
		id:       id,
		text:     cloneStringMap(text),
		keywords: cloneKeywordMap(keywords),
	}, nil
}

// MustNew calls New and panics on error.
func MustNew(id string, text map[string]string, keywords map[string][]string) Document {
	d, err := New(id, text, keywords)
	if err != nil {
		panic(err)
	}
	return d
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, text map[string]string, keywords map[string][]string) Document {
	return Document{id: id, text: text, keywords: keywords}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the content of a text field.
func (d *Document) Text(name string) (string, bool) {
	v, ok := d.text[name]
	return v, ok
}

// Keywords returns the tags of a keyword field.
func (d *Document) Keywords(name string) ([]string, bool) {
	v, ok := d.keywords[name]
	return v, ok
}

// TextFields returns all text fields.
func (d *Document) TextFields() map[string]string { return d.text }

// KeywordFields returns all keyword fields.
func (d *Document) KeywordFields() map[string][]string { return d.keywords }

// Has reports whether the document carries a value for the named field.
func (d *Document) Has(name string) bool {
	if _, ok := d.text[name]; ok {
		return true
	}
	_, ok := d.keywords[name]
	return ok
}

// Matches reports whether the named field equals value exactly, or for a
// keyword field, whether one of its tags equals value.
func (d *Document) Matches(f field.Field, value string) bool {
	if f.IsKeyword() {
		return slices.Contains(d.keywords[f.Name()], value)
	}
	v, ok := d.text[f.Name()]
	return ok && v == value
}

// Conform checks the document against a schema. With the Required policy a
// missing declared field is a configuration error; a value stored under the
// wrong kind is always rejected.
func (d *Document) Conform(s schema.Schema) error {
	for _, f := range s.Fields() {
		_, inText := d.text[f.Name()]
		_, inKeywords := d.keywords[f.Name()]
		if f.IsKeyword() && inText {
			return domain.Configf("document %q: keyword field %q given as text", d.id, f.Name())
		}
		if !f.IsKeyword() && inKeywords {
			return domain.Configf("document %q: text field %q given as keywords", d.id, f.Name())
		}
		if s.Presence() == schema.Required && !inText && !inKeywords {
			return domain.Configf("document %q: missing field %q", d.id, f.Name())
		}
	}
	return nil
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneKeywordMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	c := make(map[string][]string, len(m))
	for k, v := range m {
		c[k] = slices.Clone(v)
	}
	return c
}
