package deepmatch

import (
	"fmt"
	"regexp"
	"sort"
)

// StrategyType selects the algorithm used to compare one array path
type StrategyType string

const (
	// StrategyExact compares arrays pairwise by index, order-sensitive
	StrategyExact = StrategyType("exact")
	// StrategySet compares arrays as multisets, order-insensitive
	StrategySet = StrategyType("set")
	// StrategyKey pairs array-of-object elements by a shared key field
	StrategyKey = StrategyType("key")
)

// ArrayStrategy configures how the engine compares the array at one path.
// KeyName is required for StrategyKey & ignored otherwise
type ArrayStrategy struct {
	Type    StrategyType `json:"type" yaml:"type"`
	KeyName string       `json:"keyName,omitempty" yaml:"keyName,omitempty"`
}

// ConfigurationError describes an invalid comparison configuration, raised
// at construction time
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("deepmatch: invalid configuration for %s: %s", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Options are any possible configuration parameters for a comparison run.
// They are assembled by New from zero or more Option values & read-only
// afterwards: Comparer.Options returns a copy
type Options struct {
	// object keys excluded from traversal in both directions
	IgnoredKeys map[string]bool
	// named groups of values that compare equal regardless of type
	EquivalentValues map[string][]interface{}
	// string-match patterns keyed by exact path or trailing key name,
	// in source form. compiled matchers live alongside in patterns
	PatternChecks map[string]string
	// when true a type mismatch halts value comparison at that node
	StrictTypes bool
	// when true keys present only in the second value go unreported
	IgnoreExtraKeys bool
	// when true patterns also apply by trailing key name, not just path
	MatchKeysByName bool
	// per-array-path comparison strategies, default exact
	ArrayStrategies map[string]ArrayStrategy
	// nesting depth beyond which the engine stops descending, 0 = unbounded
	MaxDepth int

	patterns []compiledPattern
}

// compiledPattern pairs a pattern-check key with its compiled matcher
type compiledPattern struct {
	key string // exact path or key name this pattern applies to
	src string
	re  *regexp.Regexp
}

// Option is a function that adjusts Options, zero or more can be passed
// to New. An Option returning an error aborts construction
type Option func(o *Options) error

// OptionIgnoreKeys excludes the named object keys from comparison at every
// depth where they appear as a direct key
func OptionIgnoreKeys(keys ...string) Option {
	return func(o *Options) error {
		for _, k := range keys {
			o.IgnoredKeys[k] = true
		}
		return nil
	}
}

// OptionEquivalentValues registers a named group of values that compare
// equal to one another regardless of type
func OptionEquivalentValues(name string, values ...interface{}) Option {
	return func(o *Options) error {
		o.EquivalentValues[name] = append(o.EquivalentValues[name], values...)
		return nil
	}
}

// OptionPatternCheck registers one string-match pattern under an exact path
// or (with OptionMatchKeysByName) a trailing key name
func OptionPatternCheck(key, pattern string) Option {
	return func(o *Options) error {
		o.PatternChecks[key] = pattern
		return nil
	}
}

// OptionPatternChecks registers a set of string-match patterns
func OptionPatternChecks(checks map[string]string) Option {
	return func(o *Options) error {
		for k, p := range checks {
			o.PatternChecks[k] = p
		}
		return nil
	}
}

// OptionStrictTypes toggles strict type comparison. on by default
func OptionStrictTypes(strict bool) Option {
	return func(o *Options) error {
		o.StrictTypes = strict
		return nil
	}
}

// OptionIgnoreExtraKeys suppresses reporting of keys present only in the
// second compared value
func OptionIgnoreExtraKeys(ignore bool) Option {
	return func(o *Options) error {
		o.IgnoreExtraKeys = ignore
		return nil
	}
}

// OptionMatchKeysByName lets pattern checks apply by trailing key name &
// enables the independent by-key-name validation pass
func OptionMatchKeysByName(match bool) Option {
	return func(o *Options) error {
		o.MatchKeysByName = match
		return nil
	}
}

// OptionArrayStrategy assigns a comparison strategy to the array at path
func OptionArrayStrategy(path string, strategy ArrayStrategy) Option {
	return func(o *Options) error {
		o.ArrayStrategies[path] = strategy
		return nil
	}
}

// OptionMaxDepth guards against stack exhaustion on untrusted input: when
// nesting exceeds depth the engine records one structural finding at the
// offending path & stops descending. zero means unbounded
func OptionMaxDepth(depth int) Option {
	return func(o *Options) error {
		if depth < 0 {
			return &ConfigurationError{Field: "maxDepth", Err: fmt.Errorf("negative depth %d", depth)}
		}
		o.MaxDepth = depth
		return nil
	}
}

func defaultOptions() *Options {
	return &Options{
		IgnoredKeys:      map[string]bool{},
		EquivalentValues: map[string][]interface{}{},
		PatternChecks:    map[string]string{},
		StrictTypes:      true,
		ArrayStrategies:  map[string]ArrayStrategy{},
	}
}

// compilePatterns turns source-form pattern checks into matchers, sorted
// by key so check outcomes accumulate in a stable order
func (o *Options) compilePatterns() error {
	keys := make([]string, 0, len(o.PatternChecks))
	for k := range o.PatternChecks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o.patterns = make([]compiledPattern, 0, len(keys))
	for _, k := range keys {
		src := o.PatternChecks[k]
		re, err := regexp.Compile(src)
		if err != nil {
			return &ConfigurationError{Field: fmt.Sprintf("patternChecks[%s]", k), Err: err}
		}
		o.patterns = append(o.patterns, compiledPattern{key: k, src: src, re: re})
	}
	return nil
}

// copy returns a deep copy so callers can't alter in-flight comparisons
// through the returned view
func (o *Options) copy() Options {
	cp := *o
	cp.IgnoredKeys = make(map[string]bool, len(o.IgnoredKeys))
	for k, v := range o.IgnoredKeys {
		cp.IgnoredKeys[k] = v
	}
	cp.EquivalentValues = make(map[string][]interface{}, len(o.EquivalentValues))
	for k, v := range o.EquivalentValues {
		cp.EquivalentValues[k] = append([]interface{}{}, v...)
	}
	cp.PatternChecks = make(map[string]string, len(o.PatternChecks))
	for k, v := range o.PatternChecks {
		cp.PatternChecks[k] = v
	}
	cp.ArrayStrategies = make(map[string]ArrayStrategy, len(o.ArrayStrategies))
	for k, v := range o.ArrayStrategies {
		cp.ArrayStrategies[k] = v
	}
	cp.patterns = append([]compiledPattern{}, o.patterns...)
	return cp
}
