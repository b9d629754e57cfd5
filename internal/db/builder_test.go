package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("docs").
		Prefix("doc:").
		Text("title").
		TextNoStem("section").
		TagWithOpts("service", ",", true).
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "docs" {
		t.Errorf("name = %q, want docs", idx.Name)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Name != "title" || idx.Fields[0].Type != IndexFieldText || idx.Fields[0].NoStem {
		t.Errorf("field[0] = %+v, want title TEXT", idx.Fields[0])
	}
	if !idx.Fields[1].NoStem {
		t.Errorf("field[1] = %+v, want NOSTEM", idx.Fields[1])
	}
	f := idx.Fields[2]
	if f.Type != IndexFieldTag || f.TagSeparator != "," || !f.TagCaseSensitive {
		t.Errorf("field[2] = %+v, want service TAG , CASESENSITIVE", f)
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Text("x").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Text("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Text("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "invalid field name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Text("bad field").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate field",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Text("x").TagWithOpts("x", ",", false).Build()
			},
			wantErr: "duplicate field name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("docs").
		Prefix("doc:").
		Text("title").
		TagWithOpts("service", ",", true).
		MustBuild()

	want := "FT.CREATE docs ON HASH PREFIX doc: SCHEMA title TEXT service TAG"
	if got := idx.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"docs", "boostlab:docs", "a_b-c", "X9"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	invalid := []string{"", "with space", "dot.ted", "star*"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpSearch, Err: ErrIndexNotFound}
	if err.Error() != "FT.SEARCH: db: index not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != ErrIndexNotFound {
		t.Error("Unwrap() should return the wrapped error")
	}
}
