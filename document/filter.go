package document

import (
	"strings"
)

// Operator represents a comparison operator for filtering.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "eq"
	// OpNotEqual represents the inequality operator.
	OpNotEqual Operator = "ne"
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual represents the greater than or equal operator.
	OpGreaterEqual Operator = "gte"
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "lt"
	// OpLessEqual represents the less than or equal operator.
	OpLessEqual Operator = "lte"
	// OpIn represents the in list operator.
	OpIn Operator = "in"
	// OpContains represents the contains substring operator.
	OpContains Operator = "contains"
)

// Filter represents a single condition on a top-level document field.
type Filter struct {
	Key      string
	Operator Operator
	Value    Value
}

// FilterSet represents a set of filters that must all match (AND logic).
type FilterSet struct {
	Filters []Filter
}

// NewFilterSet creates a new filter set.
func NewFilterSet(filters ...Filter) *FilterSet {
	return &FilterSet{Filters: filters}
}

// Eq matches documents whose field equals v.
func Eq(field string, v Value) Filter { return Filter{Key: field, Operator: OpEqual, Value: v} }

// Ne matches documents whose field exists and differs from v.
func Ne(field string, v Value) Filter { return Filter{Key: field, Operator: OpNotEqual, Value: v} }

// Gt matches documents whose numeric field is greater than v.
func Gt(field string, v Value) Filter { return Filter{Key: field, Operator: OpGreaterThan, Value: v} }

// Gte matches documents whose numeric field is greater than or equal to v.
func Gte(field string, v Value) Filter {
	return Filter{Key: field, Operator: OpGreaterEqual, Value: v}
}

// Lt matches documents whose numeric field is less than v.
func Lt(field string, v Value) Filter { return Filter{Key: field, Operator: OpLessThan, Value: v} }

// Lte matches documents whose numeric field is less than or equal to v.
func Lte(field string, v Value) Filter { return Filter{Key: field, Operator: OpLessEqual, Value: v} }

// In matches documents whose field equals any of vs.
func In(field string, vs ...Value) Filter {
	return Filter{Key: field, Operator: OpIn, Value: Array(vs)}
}

// Contains matches documents whose string field contains substr.
func Contains(field, substr string) Filter {
	return Filter{Key: field, Operator: OpContains, Value: String(substr)}
}

// Matches checks if the provided document matches this filter.
func (f *Filter) Matches(doc Document) bool {
	value, exists := doc[f.Key]
	if !exists {
		return false
	}

	switch f.Operator {
	case OpEqual:
		return compareEqual(value, f.Value)
	case OpNotEqual:
		return !compareEqual(value, f.Value)
	case OpGreaterThan:
		return compareGreater(value, f.Value)
	case OpGreaterEqual:
		return compareGreater(value, f.Value) || compareEqual(value, f.Value)
	case OpLessThan:
		return compareLess(value, f.Value)
	case OpLessEqual:
		return compareLess(value, f.Value) || compareEqual(value, f.Value)
	case OpIn:
		return compareIn(value, f.Value)
	case OpContains:
		return compareContains(value, f.Value)
	default:
		return false
	}
}

// Matches checks if the provided document matches all filters in the set.
func (fs *FilterSet) Matches(doc Document) bool {
	for _, filter := range fs.Filters {
		if !filter.Matches(doc) {
			return false
		}
	}
	return true
}

// MatchesValue is Matches for a stored value. Non-object values never match
// a non-empty filter set.
func (fs *FilterSet) MatchesValue(v Value) bool {
	doc, ok := v.AsObject()
	if !ok {
		return len(fs.Filters) == 0
	}
	return fs.Matches(doc)
}

// Indexable reports whether every filter can be answered by an equality index.
func (fs *FilterSet) Indexable() bool {
	if fs == nil || len(fs.Filters) == 0 {
		return false
	}
	for _, f := range fs.Filters {
		switch f.Operator {
		case OpEqual:
		case OpIn:
			if f.Value.Kind != KindArray {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compareEqual(a, b Value) bool {
	return a.Key() == b.Key()
}

func compareGreater(a, b Value) bool {
	af, aok := a.AsFloat64()
	bf, bok := b.AsFloat64()
	if !aok || !bok {
		return false
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return a.I64 > b.I64
	}
	return af > bf
}

func compareLess(a, b Value) bool {
	af, aok := a.AsFloat64()
	bf, bok := b.AsFloat64()
	if !aok || !bok {
		return false
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return a.I64 < b.I64
	}
	return af < bf
}

func compareIn(a, b Value) bool {
	if b.Kind != KindArray {
		return false
	}
	for _, item := range b.A {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

func compareContains(a, b Value) bool {
	if a.Kind != KindString || b.Kind != KindString {
		return false
	}
	return strings.Contains(a.s.Value(), b.s.Value())
}
