package textindex

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"Hello, World!", []string{"hello", "world"}},
		{"EC2 t3.micro-instance", []string{"ec2", "t3", "micro", "instance"}},
		{"Grüße aus Köln", []string{"grüße", "aus", "köln"}},
		{"a--b__c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTerms_DistinctSorted(t *testing.T) {
	got := Terms("the cat and THE dog and the cat")
	want := []string{"and", "cat", "dog", "the"}
	if !slices.Equal(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}
