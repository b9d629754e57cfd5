package schema

import (
	"fmt"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/schema/field"
)

// Presence decides what happens when a document lacks a declared field.
type Presence string

const (
	// Optional treats a missing field as empty content (contributes zero to score).
	Optional Presence = "optional"
	// Required rejects documents that lack a declared field.
	Required Presence = "required"
)

// IsValid checks if the presence policy is supported.
func (p Presence) IsValid() bool { return p == Optional || p == Required }

// Schema is the fixed field layout shared by every document of a corpus.
type Schema struct {
	fields   []field.Field
	byName   map[string]int
	presence Presence
}

// New validates and creates a Schema. Field order is preserved and defines
// the order in which per-field scores are summed.
func New(fields []field.Field, presence Presence) (Schema, error) {
	if presence == "" {
		presence = Optional
	}
	if !presence.IsValid() {
		return Schema{}, domain.Configf("invalid field presence policy %q", presence)
	}
	if len(fields) == 0 {
		return Schema{}, domain.Configf("schema needs at least one field")
	}
	if len(fields) > 64 {
		return Schema{}, domain.Configf("too many fields (max 64)")
	}
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.Name()]; dup {
			return Schema{}, domain.Configf("duplicate field name: %s", f.Name())
		}
		byName[f.Name()] = i
	}
	cp := make([]field.Field, len(fields))
	copy(cp, fields)
	return Schema{fields: cp, byName: byName, presence: presence}, nil
}

// FromNames builds a schema from text and keyword field name lists.
func FromNames(text, keyword []string, presence Presence) (Schema, error) {
	fields := make([]field.Field, 0, len(text)+len(keyword))
	for _, name := range text {
		f, err := field.New(name, field.Text)
		if err != nil {
			return Schema{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		fields = append(fields, f)
	}
	for _, name := range keyword {
		f, err := field.New(name, field.Keyword)
		if err != nil {
			return Schema{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		fields = append(fields, f)
	}
	return New(fields, presence)
}

// MustFromNames calls FromNames and panics on error.
func MustFromNames(text, keyword []string) Schema {
	s, err := FromNames(text, keyword, Optional)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the declared fields in declaration order.
func (s Schema) Fields() []field.Field { return s.fields }

// Presence returns the missing-field policy.
func (s Schema) Presence() Presence { return s.presence }

// FieldByName looks up a declared field.
func (s Schema) FieldByName(name string) (field.Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return field.Field{}, false
	}
	return s.fields[i], true
}

// Names returns the declared field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name()
	}
	return names
}

// TextFields returns the names of text fields.
func (s Schema) TextFields() []string { return s.namesOf(field.Text) }

// KeywordFields returns the names of keyword fields.
func (s Schema) KeywordFields() []string { return s.namesOf(field.Keyword) }

// IsEmpty reports whether the schema was never initialized.
func (s Schema) IsEmpty() bool { return len(s.fields) == 0 }

func (s Schema) namesOf(t field.Type) []string {
	var out []string
	for _, f := range s.fields {
		if f.FieldType() == t {
			out = append(out, f.Name())
		}
	}
	return out
}
