package boost

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/boostlab/internal/domain"
)

// DefaultWeight applies to fields absent from a Vector.
const DefaultWeight = 1.0

// Vector maps field names to non-negative boost weights.
type Vector struct {
	weights map[string]float64
}

// New validates and creates a boost Vector. Weights must be finite and non-negative.
func New(weights map[string]float64) (Vector, error) {
	cp := make(map[string]float64, len(weights))
	for name, w := range weights {
		if name == "" {
			return Vector{}, domain.Configf("boost field name is required")
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return Vector{}, domain.Configf("boost for %q must be a finite non-negative number, got %v", name, w)
		}
		cp[name] = w
	}
	return Vector{weights: cp}, nil
}

// MustNew calls New and panics on error.
func MustNew(weights map[string]float64) Vector {
	v, err := New(weights)
	if err != nil {
		panic(err)
	}
	return v
}

// Weight returns the boost for a field, DefaultWeight when unset.
func (v Vector) Weight(name string) float64 {
	if w, ok := v.weights[name]; ok {
		return w
	}
	return DefaultWeight
}

// Lookup returns the explicit boost for a field.
func (v Vector) Lookup(name string) (float64, bool) {
	w, ok := v.weights[name]
	return w, ok
}

// Fields returns the explicitly boosted field names in sorted order.
func (v Vector) Fields() []string {
	names := make([]string, 0, len(v.weights))
	for name := range v.weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the explicit weights.
func (v Vector) Map() map[string]float64 {
	cp := make(map[string]float64, len(v.weights))
	for k, w := range v.weights {
		cp[k] = w
	}
	return cp
}

// Len returns the number of explicit weights.
func (v Vector) Len() int { return len(v.weights) }

// Equal reports whether both vectors hold identical weights.
func (v Vector) Equal(other Vector) bool {
	if len(v.weights) != len(other.weights) {
		return false
	}
	for k, w := range v.weights {
		ow, ok := other.weights[k]
		if !ok || ow != w {
			return false
		}
	}
	return true
}

// String renders the vector in "field^weight" form, sorted by field.
func (v Vector) String() string {
	parts := make([]string, 0, len(v.weights))
	for _, name := range v.Fields() {
		parts = append(parts, fmt.Sprintf("%s^%g", name, v.weights[name]))
	}
	return strings.Join(parts, " ")
}

// Range is an inclusive [Low, High] interval for one boost weight.
type Range struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Contains reports whether w lies inside the range.
func (r Range) Contains(w float64) bool { return w >= r.Low && w <= r.High }

// Ranges declares the searchable boost space: one Range per field.
type Ranges map[string]Range

// Validate checks that the space is non-empty and every range is well-formed.
func (rs Ranges) Validate() error {
	if len(rs) == 0 {
		return domain.Configf("at least one boost range is required")
	}
	for name, r := range rs {
		if name == "" {
			return domain.Configf("boost range field name is required")
		}
		if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
			return domain.Configf("boost range for %q must be finite", name)
		}
		if r.Low < 0 {
			return domain.Configf("boost range for %q has negative low %v", name, r.Low)
		}
		if r.Low > r.High {
			return domain.Configf("boost range for %q has low %v > high %v", name, r.Low, r.High)
		}
	}
	return nil
}

// Fields returns the declared field names in sorted order.
func (rs Ranges) Fields() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether v assigns every declared field a weight inside its range.
func (rs Ranges) Contains(v Vector) bool {
	if v.Len() != len(rs) {
		return false
	}
	for name, r := range rs {
		w, ok := v.Lookup(name)
		if !ok || !r.Contains(w) {
			return false
		}
	}
	return true
}
