package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		doc    Document
		want   bool
	}{
		{"OpEqual string match", Eq("category", String("tech")), Document{"category": String("tech")}, true},
		{"OpEqual string no match", Eq("category", String("tech")), Document{"category": String("sports")}, false},
		{"OpEqual int match", Eq("count", Int(10)), Document{"count": Int(10)}, true},
		{"OpEqual int float", Eq("count", Float(10)), Document{"count": Int(10)}, true},
		{"OpEqual missing field", Eq("count", Int(10)), Document{}, false},
		{"OpNotEqual", Ne("status", String("active")), Document{"status": String("inactive")}, true},
		{"OpGreaterThan", Gt("score", Int(50)), Document{"score": Int(75)}, true},
		{"OpGreaterThan false", Gt("score", Int(50)), Document{"score": Int(25)}, false},
		{"OpGreaterThan mixed", Gt("score", Float(49.5)), Document{"score": Int(50)}, true},
		{"OpGreaterThan non-number", Gt("score", Int(50)), Document{"score": String("75")}, false},
		{"OpGreaterEqual equal", Gte("age", Int(18)), Document{"age": Int(18)}, true},
		{"OpLessThan", Lt("temperature", Int(100)), Document{"temperature": Int(75)}, true},
		{"OpLessEqual equal", Lte("limit", Int(10)), Document{"limit": Int(10)}, true},
		{"OpIn string list", In("color", String("red"), String("blue")), Document{"color": String("blue")}, true},
		{"OpIn no match", In("color", String("red")), Document{"color": String("blue")}, false},
		{"OpIn non-array", Filter{Key: "color", Operator: OpIn, Value: String("blue")}, Document{"color": String("blue")}, false},
		{"OpContains", Contains("name", "lic"), Document{"name": String("Alice")}, true},
		{"OpContains non-string", Contains("name", "1"), Document{"name": Int(1)}, false},
		{"unknown operator", Filter{Key: "a", Operator: "xx", Value: Int(1)}, Document{"a": Int(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.doc))
		})
	}
}

func TestFilterSet(t *testing.T) {
	doc := Document{"age": Int(30), "city": String("NY")}

	assert.True(t, NewFilterSet(Eq("city", String("NY")), Gte("age", Int(30))).Matches(doc))
	assert.False(t, NewFilterSet(Eq("city", String("NY")), Gt("age", Int(30))).Matches(doc))
	assert.True(t, NewFilterSet().Matches(doc))

	assert.True(t, NewFilterSet(Eq("age", Int(30))).MatchesValue(Object(doc)))
	assert.False(t, NewFilterSet(Eq("age", Int(30))).MatchesValue(Int(30)))
	assert.True(t, NewFilterSet().MatchesValue(Int(30)))
}

func TestFilterSet_Indexable(t *testing.T) {
	assert.True(t, NewFilterSet(Eq("a", Int(1)), In("b", Int(1), Int(2))).Indexable())
	assert.False(t, NewFilterSet(Eq("a", Int(1)), Gt("b", Int(1))).Indexable())
	assert.False(t, NewFilterSet(Filter{Key: "a", Operator: OpIn, Value: Int(1)}).Indexable())
	assert.False(t, NewFilterSet().Indexable())

	var nilSet *FilterSet
	assert.False(t, nilSet.Indexable())
}
