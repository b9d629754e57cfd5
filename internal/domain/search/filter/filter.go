package filter

import (
	"fmt"
	"sort"
)

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 32

// Expression is a conjunction of exact-match conditions. An empty expression
// matches every document.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// FromMap builds an expression from a field -> value mapping. Conditions are
// ordered by field name so that engines receive a stable query.
func FromMap(m map[string]string) (Expression, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		c, err := NewMatch(k, m[k])
		if err != nil {
			return Expression{}, err
		}
		conds = append(conds, c)
	}
	return NewExpression(conds...)
}

// Must returns the conditions that every document has to satisfy.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// And returns the conjunction of both expressions.
func (e Expression) And(other Expression) Expression {
	if other.IsEmpty() {
		return e
	}
	if e.IsEmpty() {
		return other
	}
	must := make([]Condition, 0, len(e.must)+len(other.must))
	must = append(must, e.must...)
	must = append(must, other.must...)
	return Expression{must: must}
}

// Condition is a single exact-match clause.
type Condition struct {
	key   string
	match string
}

// NewMatch creates an exact match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }
