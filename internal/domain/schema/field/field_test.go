package field

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name string
		ft   Type
	}{
		{"title", Text},
		{"tags", Keyword},
		{"a", Text},
		{strings.Repeat("x", 64), Keyword},
	}

	for _, tt := range tests {
		f, err := New(tt.name, tt.ft)
		if err != nil {
			t.Errorf("New(%q, %q) unexpected error: %v", tt.name, tt.ft, err)
			continue
		}
		if f.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", f.Name(), tt.name)
		}
		if f.FieldType() != tt.ft {
			t.Errorf("FieldType() = %q, want %q", f.FieldType(), tt.ft)
		}
		if f.IsKeyword() != (tt.ft == Keyword) {
			t.Errorf("IsKeyword() = %v for %q", f.IsKeyword(), tt.ft)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		ft      Type
		wantErr string
	}{
		{"", Text, "required"},
		{strings.Repeat("x", 65), Text, "too long"},
		{"id", Text, "reserved"},
		{"score", Keyword, "reserved"},
		{"title", Type("numeric"), "invalid field type"},
	}

	for _, tt := range tests {
		_, err := New(tt.name, tt.ft)
		if err == nil {
			t.Errorf("New(%q, %q) expected error", tt.name, tt.ft)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("error = %q, want %q", err, tt.wantErr)
		}
	}
}
