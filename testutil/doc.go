// Package testutil provides testing utilities for pagedb.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic keys and documents, including skewed field
// distributions that produce uneven secondary index buckets.
//
// # Random Documents
//
//	rng := testutil.NewRNG(seed)
//	users := rng.Users(1000)          // user:00000 .. user:00999
//	doc := rng.Document(8)            // 8 random fields
//	city := rng.Zipf(len(Cities), 1.5) // skewed bucket choice
package testutil
