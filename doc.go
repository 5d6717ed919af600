// Package deepmatch performs structural, path-addressed comparison of two
// tree-shaped values, producing a detailed report of matches, mismatches &
// pattern-validation outcomes. It's intended for automated testing & data
// validation (API response checking, migration verification) where a bare
// equal/not-equal verdict isn't enough: callers need to know exactly which
// paths differ, by how much, and why.
//
// Instead of operating on JSON directly, deepmatch operates on document
// trees consisting of the go types created by unmarshaling from JSON, which
// are two complex types:
//   map[string]interface{}
//   []interface{}
// and the scalar types:
//   string, int, float64, bool, nil
//
// by operating on native go types deepmatch can compare documents encoded
// in different formats, for example decoded CSV or CBOR.
//
// Every datum is labeled with a path: object traversal appends ".key",
// array traversal appends "[index]", and key-matched array traversal
// appends a synthetic "[keyName=value]" segment. Paths are the correlation
// identifier between the two inputs & every report entry.
//
// Arrays compare under one of three strategies, selected per array path:
// exact (pairwise by index, order-sensitive), set (multiset accounting,
// order-insensitive) and key (elements paired by a shared key field, for
// arrays of objects). Comparison semantics are further parametrized by
// ignored keys, named equivalence groups, strict vs loose typing & regex
// pattern checks on string leaves.
//
// Comparison never fails once started: configuration problems surface from
// New, everything discovered mid-walk is captured as data in the Result.
package deepmatch
