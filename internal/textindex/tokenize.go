package textindex

import (
	"slices"
	"strings"
	"unicode"
)

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Tokenize lowercases s and splits it into runs of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), isSeparator)
}

// Terms returns the sorted set of distinct tokens of s.
func Terms(s string) []string {
	tokens := Tokenize(s)
	slices.Sort(tokens)
	return slices.Compact(tokens)
}
