package deepmatch

import (
	"fmt"
	"sort"
)

// key mismatch messages, shared with the formatter
const (
	missingKeyMessage = "key exists in first value, not second"
	extraKeyMessage   = "key exists in second value, not first"
)

// Compare is a convenience wrapper that constructs a Comparer & runs a
// single comparison with it
func Compare(v1, v2 interface{}, opts ...Option) (*Result, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Compare(v1, v2), nil
}

// New creates a Comparer from zero or more Options. Malformed pattern
// strings or invalid option values fail construction with a
// *ConfigurationError
func New(opts ...Option) (*Comparer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if err := o.compilePatterns(); err != nil {
		return nil, err
	}
	return &Comparer{opts: o}, nil
}

// Comparer is a state machine for computing a path-addressed comparison
// report over two tree-shaped values. A Comparer is safe to reuse for
// sequential runs, each run starts from a fresh Result. It is not safe for
// concurrent use, create one Comparer per goroutine
type Comparer struct {
	opts *Options
	res  *Result
	pv   *patternValidator
}

// Options returns a copy of the comparer's configuration. Mutating the
// returned value does not affect in-flight or future comparisons
func (c *Comparer) Options() Options {
	return c.opts.copy()
}

func (c *Comparer) reset() {
	c.res = newResult(c.opts.StrictTypes)
	c.pv = newPatternValidator(c.opts, c.res)
}

// Compare walks v1 & v2 in lockstep from the root & returns the full
// report. Comparison never fails once started: every anomaly is captured
// as data in the Result
func (c *Comparer) Compare(v1, v2 interface{}) *Result {
	c.reset()
	c.compare(v1, v2, "", 0)
	c.res.updateSummary()
	return c.res
}

// CompareAndValidate performs Compare, then additionally scans v2 for
// every path whose trailing key name carries a configured pattern,
// independent of the comparison verdict
func (c *Comparer) CompareAndValidate(v1, v2 interface{}) *Result {
	c.reset()
	c.compare(v1, v2, "", 0)
	c.pv.checkAllByKeyName(v2)
	c.res.updateSummary()
	return c.res
}

// Validate applies pattern checks to v without a comparison baseline:
// equivalent to comparing v against an empty object, then running the
// by-key-name pattern scan over v
func (c *Comparer) Validate(v interface{}) *Result {
	c.reset()
	var empty interface{} = map[string]interface{}{}
	if classify(v) == kindArray {
		empty = []interface{}{}
	}
	c.compare(v, empty, "", 0)
	c.pv.checkAllByKeyName(v)
	c.res.updateSummary()
	return c.res
}

// compare dispatches on the shapes of the two values at path
func (c *Comparer) compare(v1, v2 interface{}, path string, depth int) {
	if c.opts.MaxDepth > 0 && depth > c.opts.MaxDepth {
		c.res.addUnmatchedValue(ValueMismatch{
			Path:    path,
			Message: fmt.Sprintf("nesting exceeds max depth %d, not descending", c.opts.MaxDepth),
		})
		return
	}

	k1, k2 := classify(v1), classify(v2)
	switch {
	case k1 == kindNull || k2 == kindNull:
		c.compareScalars(v1, v2, path)
	case k1 == kindArray && k2 == kindArray:
		c.compareArrays(v1.([]interface{}), v2.([]interface{}), path, depth)
	case k1 == kindObject && k2 == kindObject:
		c.compareObjects(v1.(map[string]interface{}), v2.(map[string]interface{}), path, depth)
	default:
		// at least one side is a scalar, or the container shapes disagree
		// (object vs array), which scalar comparison reports as a type
		// mismatch
		c.compareScalars(v1, v2, path)
	}
}

func (c *Comparer) compareObjects(o1, o2 map[string]interface{}, path string, depth int) {
	keys := make([]string, 0, len(o1))
	for key := range o1 {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if c.opts.IgnoredKeys[key] {
			continue
		}
		childPath := joinKey(path, key)
		w1 := o1[key]
		w2, ok := o2[key]
		if !ok {
			c.res.addUnmatchedKey(KeyMismatch{
				Path:    childPath,
				Value:   w1,
				Message: missingKeyMessage,
			})
			continue
		}
		c.res.addMatchedKey(childPath)
		if isContainer(w1) && isContainer(w2) {
			c.compare(w1, w2, childPath, depth+1)
		} else {
			c.compareScalars(w1, w2, childPath)
		}
	}

	if c.opts.IgnoreExtraKeys {
		return
	}
	extra := make([]string, 0, len(o2))
	for key := range o2 {
		if _, ok := o1[key]; !ok && !c.opts.IgnoredKeys[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		c.res.addUnmatchedKey(KeyMismatch{
			Path:    joinKey(path, key),
			Value:   o2[key],
			Message: extraKeyMessage,
		})
	}
}

// compareArrays selects the configured strategy for the array at path,
// defaulting to exact. invalid strategy configuration degrades to a
// structural finding plus the exact strategy, never an aborted run
func (c *Comparer) compareArrays(a1, a2 []interface{}, path string, depth int) {
	strategy := c.opts.ArrayStrategies[path]
	switch strategy.Type {
	case StrategySet:
		c.compareArraySet(a1, a2, path)
	case StrategyKey:
		if strategy.KeyName == "" {
			c.res.addUnmatchedValue(ValueMismatch{
				Path:    path,
				Message: "key strategy configured without keyName, falling back to exact comparison",
			})
			c.compareArrayExact(a1, a2, path, depth)
			return
		}
		c.compareArrayKey(a1, a2, path, strategy.KeyName, depth)
	case StrategyExact, StrategyType(""):
		c.compareArrayExact(a1, a2, path, depth)
	default:
		c.res.addUnmatchedValue(ValueMismatch{
			Path:    path,
			Message: fmt.Sprintf("unknown array strategy %q, falling back to exact comparison", strategy.Type),
		})
		c.compareArrayExact(a1, a2, path, depth)
	}
}

// compareArrayExact compares elements pairwise by index. a length mismatch
// is reported at the array's own path, shared indices still compare & the
// tail of the longer array is reported element by element
func (c *Comparer) compareArrayExact(a1, a2 []interface{}, path string, depth int) {
	if len(a1) != len(a2) {
		c.res.addUnmatchedValue(ValueMismatch{
			Path:     path,
			Expected: len(a1),
			Actual:   len(a2),
			Message:  fmt.Sprintf("array lengths differ: %d vs %d", len(a1), len(a2)),
		})
	}

	shared := len(a1)
	if len(a2) < shared {
		shared = len(a2)
	}
	for i := 0; i < shared; i++ {
		childPath := joinIndex(path, i)
		if isContainer(a1[i]) && isContainer(a2[i]) {
			c.compare(a1[i], a2[i], childPath, depth+1)
		} else {
			c.compareScalars(a1[i], a2[i], childPath)
		}
	}
	for i := shared; i < len(a1); i++ {
		c.res.addUnmatchedValue(ValueMismatch{
			Path:     joinIndex(path, i),
			Expected: a1[i],
			Message:  "extra element in first array",
		})
	}
	for i := shared; i < len(a2); i++ {
		c.res.addUnmatchedValue(ValueMismatch{
			Path:    joinIndex(path, i),
			Actual:  a2[i],
			Message: "extra element in second array",
		})
	}
}

// setKey produces the multiset key for an array element: container
// elements key on their serialized form, primitives on the raw value.
// serialization is key-order sensitive for object elements, two
// structurally equal objects that serialize differently count as distinct
// set members
func setKey(v interface{}) interface{} {
	if isContainer(v) {
		return stringify(v)
	}
	return v
}

func multiset(a []interface{}) map[interface{}]int {
	m := make(map[interface{}]int, len(a))
	for _, el := range a {
		m[setKey(el)]++
	}
	return m
}

// compareArraySet compares arrays as multisets. differing lengths get one
// report at the array path & no element-level detail, otherwise every
// occurrence-count discrepancy gets one entry
func (c *Comparer) compareArraySet(a1, a2 []interface{}, path string) {
	if len(a1) != len(a2) {
		c.res.addUnmatchedValue(ValueMismatch{
			Path:     path,
			Expected: len(a1),
			Actual:   len(a2),
			Message:  fmt.Sprintf("array lengths differ: %d vs %d, set comparison skipped", len(a1), len(a2)),
		})
		return
	}

	m1, m2 := multiset(a1), multiset(a2)
	union := make(map[interface{}]bool, len(m1)+len(m2))
	for k := range m1 {
		union[k] = true
	}
	for k := range m2 {
		union[k] = true
	}
	// sorted by display form for stable report order
	keys := make([]interface{}, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
	})

	mismatched := false
	for _, k := range keys {
		if m1[k] == m2[k] {
			continue
		}
		mismatched = true
		c.res.addUnmatchedValue(ValueMismatch{
			Path:     path,
			Expected: m1[k],
			Actual:   m2[k],
			Message:  fmt.Sprintf("element %v occurs %d time(s) in first array, %d in second", k, m1[k], m2[k]),
		})
	}
	if !mismatched {
		c.res.addMatchedValue(ValueMatch{
			Path:    path,
			Value:   a2,
			Type:    "array",
			Message: "arrays match as sets",
		})
	}
}

// compareArrayKey pairs elements across the two arrays by the value of
// their keyName field & recurses into object comparison for each pair at a
// synthetic "[keyName=value]" path
func (c *Comparer) compareArrayKey(a1, a2 []interface{}, path, keyName string, depth int) {
	e1, ok1 := c.keyElements(a1, path, keyName, "first")
	e2, ok2 := c.keyElements(a2, path, keyName, "second")
	structural := !ok1 || !ok2

	union := make(map[string]bool, len(e1)+len(e2))
	for k := range e1 {
		union[k] = true
	}
	for k := range e2 {
		union[k] = true
	}
	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	missing := false
	for _, k := range keys {
		childPath := joinKeyMatch(path, keyName, k)
		el1, in1 := e1[k]
		el2, in2 := e2[k]
		switch {
		case in1 && in2:
			c.compare(el1, el2, childPath, depth+1)
		case in1:
			missing = true
			c.res.addUnmatchedValue(ValueMismatch{
				Path:     childPath,
				Expected: el1,
				Message:  fmt.Sprintf("element with %s=%s exists in first array only", keyName, k),
			})
		default:
			missing = true
			c.res.addUnmatchedValue(ValueMismatch{
				Path:    childPath,
				Actual:  el2,
				Message: fmt.Sprintf("element with %s=%s exists in second array only", keyName, k),
			})
		}
	}

	// when both sides keyed cleanly, any count difference already surfaced
	// as a one-sided key above, so clean & complete means the counts agree
	if !structural && !missing {
		c.res.addMatchedValue(ValueMatch{
			Path:    path,
			Value:   a2,
			Type:    "array",
			Message: fmt.Sprintf("arrays match by key %q", keyName),
		})
	}
}

// keyElements indexes one array's elements by their key-field value,
// reporting unkeyable elements & duplicate keys as it goes. clean is false
// when either was found. keying reads the raw key field even when keyName
// is itself an ignored key, the ignore applies during the recursive object
// comparison instead
func (c *Comparer) keyElements(a []interface{}, path, keyName, which string) (elems map[string]map[string]interface{}, clean bool) {
	elems = make(map[string]map[string]interface{}, len(a))
	clean = true
	reportedDups := map[string]bool{}
	for i, el := range a {
		obj, isObj := el.(map[string]interface{})
		if !isObj || obj[keyName] == nil {
			clean = false
			mismatch := ValueMismatch{
				Path:    joinIndex(path, i),
				Message: fmt.Sprintf("element in %s array is not keyable by %q", which, keyName),
			}
			if which == "first" {
				mismatch.Expected = el
			} else {
				mismatch.Actual = el
			}
			c.res.addUnmatchedValue(mismatch)
			continue
		}
		k := stringify(obj[keyName])
		if _, dup := elems[k]; dup {
			clean = false
			// a key duplicated more than twice still reports once
			if !reportedDups[k] {
				reportedDups[k] = true
				c.res.addUnmatchedValue(ValueMismatch{
					Path:    path,
					Message: fmt.Sprintf("duplicate key %s=%s in %s array", keyName, k, which),
				})
			}
			continue
		}
		elems[k] = obj
	}
	return elems, clean
}

// compareScalars judges two leaf values: equivalence groups first, then
// type tags, then strict or loose equality. the second value always routes
// through pattern validation, whatever the verdict
func (c *Comparer) compareScalars(v1, v2 interface{}, path string) {
	defer c.pv.checkValue(v2, path)

	names := make([]string, 0, len(c.opts.EquivalentValues))
	for name := range c.opts.EquivalentValues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := c.opts.EquivalentValues[name]
		if containsValue(group, v1) && containsValue(group, v2) {
			c.res.addMatchedValue(ValueMatch{
				Path:    path,
				Value:   v2,
				Message: fmt.Sprintf("values equivalent under rule %q", name),
			})
			return
		}
	}

	t1, t2 := typeTag(v1), typeTag(v2)
	if t1 != t2 {
		c.res.addUnmatchedType(TypeMismatch{
			Path:     path,
			Expected: t1,
			Actual:   t2,
			Message:  fmt.Sprintf("types differ: expected %s, got %s", t1, t2),
		})
		if c.opts.StrictTypes {
			return
		}
	}

	equal := false
	if c.opts.StrictTypes {
		equal = strictEqual(v1, v2)
	} else {
		equal = looseEqual(v1, v2)
	}
	if equal {
		c.res.addMatchedValue(ValueMatch{Path: path, Value: v2, Type: t2})
		return
	}
	c.res.addUnmatchedValue(ValueMismatch{
		Path:         path,
		Expected:     v1,
		Actual:       v2,
		ExpectedType: t1,
		ActualType:   t2,
		Message:      "values differ",
	})
}

func containsValue(group []interface{}, v interface{}) bool {
	for _, member := range group {
		if strictEqual(member, v) {
			return true
		}
	}
	return false
}
