package db

// WeightedField is one scored field of a text query.
type WeightedField struct {
	Name   string
	Weight float64
}

// FieldFilter is an exact-match pre-filter clause.
type FieldFilter struct {
	Field string
	Value string
	Tag   bool
}

// TextQuery is the input for weighted multi-field full-text search.
type TextQuery struct {
	IndexName    string
	Terms        []string
	Fields       []WeightedField
	Filters      []FieldFilter
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
