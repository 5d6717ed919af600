package deepmatch

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type TestCase struct {
	description string // description of what the test is checking
	v1, v2      string // express test cases as json strings
	expect      Expect // expected report contents
}

// Expect holds the expected categories of a comparison report. nil slices
// match empty ones
type Expect struct {
	Matched   Matched
	Unmatched Unmatched
	Regex     RegexChecks
	Summary   Summary
}

func RunTestCases(t *testing.T, cases []TestCase, opts ...Option) {
	t.Helper()
	dm, err := New(opts...)
	if err != nil {
		t.Fatalf("constructing comparer: %s", err)
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			var v1, v2 interface{}
			if err := json.Unmarshal([]byte(c.v1), &v1); err != nil {
				t.Fatal(err)
			}
			if err := json.Unmarshal([]byte(c.v2), &v2); err != nil {
				t.Fatal(err)
			}

			got := dm.Compare(v1, v2)

			if diff := cmp.Diff(c.expect.Matched, got.Matched, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("matched mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.expect.Unmatched, got.Unmatched, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("unmatched mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.expect.Regex, got.RegexChecks, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("regex checks mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.expect.Summary, got.Summary); diff != "" {
				t.Errorf("summary mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBasicComparison(t *testing.T) {
	cases := []TestCase{
		{
			"identical scalars under one key",
			`{"a":1}`,
			`{"a":1}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"one matching & one differing value",
			`{"a":1,"b":2}`,
			`{"a":1,"b":3}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a", "b"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Values: []ValueMismatch{{
						Path:         "b",
						Expected:     float64(2),
						Actual:       float64(3),
						ExpectedType: "number",
						ActualType:   "number",
						Message:      "values differ",
					}},
				},
				Summary: Summary{MatchPercentage: 50, TotalKeysCompared: 2, TotalMatched: 1, TotalUnmatched: 1},
			},
		},
		{
			"nested objects",
			`{"a":{"b":"hi"}}`,
			`{"a":{"b":"hi"}}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a", "a.b"},
					Values: []ValueMatch{{Path: "a.b", Value: "hi", Type: "string"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"key missing from second value",
			`{"a":1,"b":2}`,
			`{"a":1}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Keys: []KeyMismatch{{Path: "b", Value: float64(2), Message: "key exists in first value, not second"}},
				},
				Summary: Summary{MatchPercentage: 50, TotalKeysCompared: 2, TotalMatched: 1, TotalUnmatched: 1},
			},
		},
		{
			"key only in second value",
			`{"a":1}`,
			`{"a":1,"b":2}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Keys: []KeyMismatch{{Path: "b", Value: float64(2), Message: "key exists in second value, not first"}},
				},
				Summary: Summary{MatchPercentage: 50, TotalKeysCompared: 2, TotalMatched: 1, TotalUnmatched: 1},
			},
		},
		{
			"both nulls match",
			`{"a":null}`,
			`{"a":null}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: nil, Type: "null"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"null against non-null is a type mismatch",
			`{"a":null}`,
			`{"a":1}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Types: []TypeMismatch{{Path: "a", Expected: "null", Actual: "number", Message: "types differ: expected null, got number"}},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
		{
			"object against array is a type mismatch",
			`{"a":{"b":1}}`,
			`{"a":[1]}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Types: []TypeMismatch{{Path: "a", Expected: "object", Actual: "array", Message: "types differ: expected object, got array"}},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
	}

	RunTestCases(t, cases)
}

func TestStrictTypes(t *testing.T) {
	cases := []TestCase{
		{
			"number against numeric string stops at the type mismatch",
			`{"a":1}`,
			`{"a":"1"}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Types: []TypeMismatch{{Path: "a", Expected: "number", Actual: "string", Message: "types differ: expected number, got string"}},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
	}

	RunTestCases(t, cases)
}

func TestLooseTypes(t *testing.T) {
	cases := []TestCase{
		{
			"number equals its numeric string",
			`{"a":1}`,
			`{"a":"1"}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: "1", Type: "string"}},
				},
				Unmatched: Unmatched{
					// the type difference is still recorded, it just doesn't
					// block value comparison or count toward the summary
					Types: []TypeMismatch{{Path: "a", Expected: "number", Actual: "string", Message: "types differ: expected number, got string"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"garbage-suffixed numeric string is not a number",
			`{"a":1}`,
			`{"a":"1abc"}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Values: []ValueMismatch{{Path: "a", Expected: float64(1), Actual: "1abc", ExpectedType: "number", ActualType: "string", Message: "values differ"}},
					Types:  []TypeMismatch{{Path: "a", Expected: "number", Actual: "string", Message: "types differ: expected number, got string"}},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
		{
			"bool equals one",
			`{"a":true}`,
			`{"a":1}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Types: []TypeMismatch{{Path: "a", Expected: "boolean", Actual: "number", Message: "types differ: expected boolean, got number"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionStrictTypes(false))
}

func TestIgnoredKeys(t *testing.T) {
	cases := []TestCase{
		{
			"ignored key suppresses value mismatch at every depth",
			`{"a":1,"ts":"2020-01-01","nested":{"ts":"2020-01-01"}}`,
			`{"a":1,"ts":"2021-09-09","nested":{"ts":"never"}}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a", "nested"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"ignored key suppresses key-existence reporting both ways",
			`{"a":1,"ts":"2020-01-01"}`,
			`{"a":1,"debug":true}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionIgnoreKeys("ts", "debug"))
}

func TestIgnoreExtraKeys(t *testing.T) {
	cases := []TestCase{
		{
			"keys only in the second value go unreported",
			`{"a":1}`,
			`{"a":1,"b":2,"c":3}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: float64(1), Type: "number"}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionIgnoreExtraKeys(true))
}

func TestEquivalentValues(t *testing.T) {
	cases := []TestCase{
		{
			"group members compare equal across types",
			`{"a":null}`,
			`{"a":"N/A"}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a", Value: "N/A", Message: `values equivalent under rule "empty"`}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"non-members still mismatch",
			`{"a":null}`,
			`{"a":"set"}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Types: []TypeMismatch{{Path: "a", Expected: "null", Actual: "string", Message: "types differ: expected null, got string"}},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionEquivalentValues("empty", nil, "", "N/A"))
}

func TestExactArrayStrategy(t *testing.T) {
	cases := []TestCase{
		{
			"order sensitive",
			`{"a":[1,2]}`,
			`{"a":[2,1]}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Values: []ValueMismatch{
						{Path: "a[0]", Expected: float64(1), Actual: float64(2), ExpectedType: "number", ActualType: "number", Message: "values differ"},
						{Path: "a[1]", Expected: float64(2), Actual: float64(1), ExpectedType: "number", ActualType: "number", Message: "values differ"},
					},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 2, TotalUnmatched: 2},
			},
		},
		{
			"length mismatch still compares shared indices",
			`{"a":[1]}`,
			`{"a":[1,2]}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"a"},
					Values: []ValueMatch{{Path: "a[0]", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Values: []ValueMismatch{
						{Path: "a", Expected: 1, Actual: 2, Message: "array lengths differ: 1 vs 2"},
						{Path: "a[1]", Actual: float64(2), Message: "extra element in second array"},
					},
				},
				Summary: Summary{
					MatchPercentage:   float64(1) / float64(3) * 100,
					TotalKeysCompared: 3,
					TotalMatched:      1,
					TotalUnmatched:    2,
				},
			},
		},
		{
			"nested containers recurse by index",
			`{"a":[{"b":1}]}`,
			`{"a":[{"b":2}]}`,
			Expect{
				Matched: Matched{Keys: []string{"a", "a[0].b"}},
				Unmatched: Unmatched{
					Values: []ValueMismatch{
						{Path: "a[0].b", Expected: float64(1), Actual: float64(2), ExpectedType: "number", ActualType: "number", Message: "values differ"},
					},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
	}

	RunTestCases(t, cases)
}

func TestSetArrayStrategy(t *testing.T) {
	cases := []TestCase{
		{
			"order independent",
			`{"a":[1,2,3]}`,
			`{"a":[3,2,1]}`,
			Expect{
				Matched: Matched{
					Keys: []string{"a"},
					Values: []ValueMatch{{
						Path:    "a",
						Value:   []interface{}{float64(3), float64(2), float64(1)},
						Type:    "array",
						Message: "arrays match as sets",
					}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
		{
			"occurrence count mismatch",
			`{"a":[1,1,2]}`,
			`{"a":[1,2,2]}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Values: []ValueMismatch{
						{Path: "a", Expected: 2, Actual: 1, Message: "element 1 occurs 2 time(s) in first array, 1 in second"},
						{Path: "a", Expected: 1, Actual: 2, Message: "element 2 occurs 1 time(s) in first array, 2 in second"},
					},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 2, TotalUnmatched: 2},
			},
		},
		{
			"length mismatch skips element detail",
			`{"a":[1]}`,
			`{"a":[1,2]}`,
			Expect{
				Matched: Matched{Keys: []string{"a"}},
				Unmatched: Unmatched{
					Values: []ValueMismatch{
						{Path: "a", Expected: 1, Actual: 2, Message: "array lengths differ: 1 vs 2, set comparison skipped"},
					},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
		{
			"container elements key on their serialized form",
			`{"a":[{"x":1},{"x":2}]}`,
			`{"a":[{"x":2},{"x":1}]}`,
			Expect{
				Matched: Matched{
					Keys: []string{"a"},
					Values: []ValueMatch{{
						Path: "a",
						Value: []interface{}{
							map[string]interface{}{"x": float64(2)},
							map[string]interface{}{"x": float64(1)},
						},
						Type:    "array",
						Message: "arrays match as sets",
					}},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 1, TotalMatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionArrayStrategy("a", ArrayStrategy{Type: StrategySet}))
}

func TestKeyArrayStrategy(t *testing.T) {
	strategy := OptionArrayStrategy("items", ArrayStrategy{Type: StrategyKey, KeyName: "id"})

	cases := []TestCase{
		{
			"order independent pairing",
			`{"items":[{"id":1,"n":"a"},{"id":2,"n":"b"}]}`,
			`{"items":[{"id":2,"n":"b"},{"id":1,"n":"a"}]}`,
			Expect{
				Matched: Matched{
					Keys: []string{
						"items",
						"items[id=1].id", "items[id=1].n",
						"items[id=2].id", "items[id=2].n",
					},
					Values: []ValueMatch{
						{Path: "items[id=1].id", Value: float64(1), Type: "number"},
						{Path: "items[id=1].n", Value: "a", Type: "string"},
						{Path: "items[id=2].id", Value: float64(2), Type: "number"},
						{Path: "items[id=2].n", Value: "b", Type: "string"},
						{
							Path: "items",
							Value: []interface{}{
								map[string]interface{}{"id": float64(2), "n": "b"},
								map[string]interface{}{"id": float64(1), "n": "a"},
							},
							Type:    "array",
							Message: `arrays match by key "id"`,
						},
					},
				},
				Summary: Summary{MatchPercentage: 100, TotalKeysCompared: 5, TotalMatched: 5},
			},
		},
		{
			"removed element reports exactly once at its synthetic path",
			`{"items":[{"id":1},{"id":2}]}`,
			`{"items":[{"id":2}]}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"items", "items[id=2].id"},
					Values: []ValueMatch{{Path: "items[id=2].id", Value: float64(2), Type: "number"}},
				},
				Unmatched: Unmatched{
					Values: []ValueMismatch{{
						Path:     "items[id=1]",
						Expected: map[string]interface{}{"id": float64(1)},
						Message:  "element with id=1 exists in first array only",
					}},
				},
				Summary: Summary{MatchPercentage: 50, TotalKeysCompared: 2, TotalMatched: 1, TotalUnmatched: 1},
			},
		},
		{
			"duplicate keys report once per side",
			`{"items":[{"id":1},{"id":1}]}`,
			`{"items":[{"id":1}]}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"items", "items[id=1].id"},
					Values: []ValueMatch{{Path: "items[id=1].id", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Values: []ValueMismatch{{
						Path:    "items",
						Message: "duplicate key id=1 in first array",
					}},
				},
				Summary: Summary{MatchPercentage: 50, TotalKeysCompared: 2, TotalMatched: 1, TotalUnmatched: 1},
			},
		},
		{
			"unkeyable elements report at their index",
			`{"items":[{"id":1},5]}`,
			`{"items":[{"id":1},{"noid":true}]}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"items", "items[id=1].id"},
					Values: []ValueMatch{{Path: "items[id=1].id", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Values: []ValueMismatch{
						{
							Path:     "items[1]",
							Expected: float64(5),
							Message:  `element in first array is not keyable by "id"`,
						},
						{
							Path:    "items[1]",
							Actual:  map[string]interface{}{"noid": true},
							Message: `element in second array is not keyable by "id"`,
						},
					},
				},
				Summary: Summary{
					MatchPercentage:   float64(1) / float64(3) * 100,
					TotalKeysCompared: 3,
					TotalMatched:      1,
					TotalUnmatched:    2,
				},
			},
		},
	}

	RunTestCases(t, cases, strategy)
}

func TestKeyStrategyMissingKeyName(t *testing.T) {
	cases := []TestCase{
		{
			"degrades to exact with a structural finding",
			`{"items":[1]}`,
			`{"items":[1]}`,
			Expect{
				Matched: Matched{
					Keys:   []string{"items"},
					Values: []ValueMatch{{Path: "items[0]", Value: float64(1), Type: "number"}},
				},
				Unmatched: Unmatched{
					Values: []ValueMismatch{{
						Path:    "items",
						Message: "key strategy configured without keyName, falling back to exact comparison",
					}},
				},
				Summary: Summary{MatchPercentage: 50, TotalKeysCompared: 2, TotalMatched: 1, TotalUnmatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionArrayStrategy("items", ArrayStrategy{Type: StrategyKey}))
}

func TestMaxDepth(t *testing.T) {
	cases := []TestCase{
		{
			"descent stops past the configured depth",
			`{"a":{"b":{"c":1}}}`,
			`{"a":{"b":{"c":1}}}`,
			Expect{
				Matched: Matched{Keys: []string{"a", "a.b"}},
				Unmatched: Unmatched{
					Values: []ValueMismatch{{
						Path:    "a.b",
						Message: "nesting exceeds max depth 1, not descending",
					}},
				},
				Summary: Summary{MatchPercentage: 0, TotalKeysCompared: 1, TotalUnmatched: 1},
			},
		},
	}

	RunTestCases(t, cases, OptionMaxDepth(1))
}

func TestReflexivity(t *testing.T) {
	docJSON := `{
		"a": 100,
		"foo": [1,2,3],
		"bar": false,
		"baz": {
			"a": {"b": 4, "c": false, "d": "apples-and-oranges"},
			"e": null,
			"g": "apples-and-oranges"
		},
		"empty": {},
		"emptyArr": []
	}`

	var v1, v2 interface{}
	if err := json.Unmarshal([]byte(docJSON), &v1); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(docJSON), &v2); err != nil {
		t.Fatal(err)
	}

	dm, err := New()
	if err != nil {
		t.Fatal(err)
	}
	res := dm.Compare(v1, v2)

	if res.Summary.MatchPercentage != 100 {
		t.Errorf("want 100%% match, got %f", res.Summary.MatchPercentage)
	}
	if len(res.Unmatched.Keys)+len(res.Unmatched.Values)+len(res.Unmatched.Types) != 0 {
		t.Errorf("want empty unmatched categories, got %v", res.Unmatched)
	}
	if len(res.RegexChecks.Failed) != 0 {
		t.Errorf("want no failed regex checks, got %v", res.RegexChecks.Failed)
	}
}

func TestComparerReuse(t *testing.T) {
	dm, err := New()
	if err != nil {
		t.Fatal(err)
	}

	first := dm.Compare(
		map[string]interface{}{"a": float64(1)},
		map[string]interface{}{"a": float64(2)},
	)
	second := dm.Compare(
		map[string]interface{}{"a": float64(1)},
		map[string]interface{}{"a": float64(1)},
	)

	// the first snapshot must survive the second run untouched
	if first.Summary.MatchPercentage != 0 {
		t.Errorf("first run: want 0%% match, got %f", first.Summary.MatchPercentage)
	}
	if len(first.Unmatched.Values) != 1 {
		t.Errorf("first run: want 1 unmatched value, got %d", len(first.Unmatched.Values))
	}
	if second.Summary.MatchPercentage != 100 {
		t.Errorf("second run: want 100%% match, got %f", second.Summary.MatchPercentage)
	}
}
