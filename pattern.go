package deepmatch

import "fmt"

// patternValidator routes string leaves through the configured pattern
// checks, recording pass/fail outcomes into the run's Result. One validator
// lives for exactly one comparison run
type patternValidator struct {
	opts *Options
	res  *Result
	// (pattern key, path) pairs already checked, so the secondary by-name
	// scan doesn't duplicate entries recorded during the walk
	seen map[string]map[string]bool
}

func newPatternValidator(opts *Options, res *Result) *patternValidator {
	return &patternValidator{opts: opts, res: res, seen: map[string]map[string]bool{}}
}

func (pv *patternValidator) mark(patternKey, path string) {
	paths := pv.seen[patternKey]
	if paths == nil {
		paths = map[string]bool{}
		pv.seen[patternKey] = paths
	}
	paths[path] = true
}

func (pv *patternValidator) checked(patternKey, path string) bool {
	return pv.seen[patternKey][path]
}

func (pv *patternValidator) record(p compiledPattern, value, path string, byName bool) {
	pv.mark(p.key, path)
	check := PatternCheck{
		Path:          path,
		Value:         value,
		Pattern:       p.src,
		MatchedByName: byName,
	}
	if p.re.MatchString(value) {
		pv.res.addPatternPass(check)
		return
	}
	check.Message = fmt.Sprintf("value %q does not match pattern %q", value, p.src)
	pv.res.addPatternFail(check)
}

// checkValue tests a visited leaf against every applicable pattern. a
// pattern applies by exact path, or by trailing key name when key-name
// matching is enabled. no-op for non-string values
func (pv *patternValidator) checkValue(value interface{}, path string) {
	str, ok := value.(string)
	if !ok {
		return
	}
	for _, p := range pv.opts.patterns {
		switch {
		case p.key == path:
			pv.record(p, str, path, false)
		case pv.opts.MatchKeysByName && p.key == KeyNameOf(path):
			pv.record(p, str, path, true)
		}
	}
}

// checkAllByKeyName is the independent secondary pass: for every pattern,
// test each string leaf under root whose trailing key name equals the
// pattern key, skipping (pattern, path) pairs already recorded. no-op
// unless key-name matching is enabled
func (pv *patternValidator) checkAllByKeyName(root interface{}) {
	if !pv.opts.MatchKeysByName || len(pv.opts.patterns) == 0 {
		return
	}
	paths := AllPaths(root)
	for _, p := range pv.opts.patterns {
		for _, path := range paths {
			if KeyNameOf(path) != p.key || pv.checked(p.key, path) {
				continue
			}
			v, ok := ValueAt(root, path)
			if !ok {
				continue
			}
			if str, ok := v.(string); ok {
				pv.record(p, str, path, true)
			}
		}
	}
}
