// Package document provides the typed JSON value model stored by pagedb.
//
// A stored record is a single Value. When that value is a JSON object its
// top-level fields form a Document, and each field is eligible for secondary
// indexing by value equality.
//
// # Values
//
//   - Null: document.Null()
//   - Int: document.Int(30)
//   - Float: document.Float(3.14)
//   - String: document.String("NY")
//   - Bool: document.Bool(true)
//   - Array: document.Array([]document.Value{...})
//   - Object: document.Object(document.Document{...})
//
// Values round-trip through plain JSON: integers stay integers and floats
// always carry a fractional part or exponent on the wire.
//
// # Equality
//
// Value.Key returns a stable string used as the equality key in indexes.
// Numbers compare by numeric value (Int(30) and Float(30) share a key);
// arrays and objects are compared as whole values.
//
// # Filters
//
//	fs := document.NewFilterSet(
//	    document.Eq("city", document.String("NY")),
//	    document.Gte("age", document.Int(25)),
//	)
//	ok := fs.Matches(doc)
package document
