package field

import "fmt"

// Type is the indexing type of a field.
type Type string

// Field type constants.
const (
	// Text is a free-form field, tokenized for scoring.
	Text Type = "text"
	// Keyword is an exact, case-preserved, possibly multi-valued field.
	Keyword Type = "keyword"
)

// IsValid reports whether the type is supported.
func (t Type) IsValid() bool { return t == Text || t == Keyword }

var reservedFieldNames = map[string]bool{
	"id": true, "score": true,
}

// Field is an immutable value object describing an indexed document field.
type Field struct {
	name      string
	fieldType Type
}

// New validates and creates a Field.
// Name must be non-empty, max 64 chars, and not reserved.
func New(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if !ft.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// Reconstruct creates a Field without validation.
func Reconstruct(name string, ft Type) Field {
	return Field{name: name, fieldType: ft}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's indexing type.
func (f Field) FieldType() Type { return f.fieldType }

// IsKeyword reports whether the field holds exact-match tags.
func (f Field) IsKeyword() bool { return f.fieldType == Keyword }
