package deepmatch

// ValueMatch records a successful value comparison at one path
type ValueMatch struct {
	Path    string      `json:"path"`
	Value   interface{} `json:"value"`
	Type    string      `json:"type,omitempty"`
	Message string      `json:"message,omitempty"`
}

// KeyMismatch records a key present on only one side of a comparison
type KeyMismatch struct {
	Path    string      `json:"path"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

// ValueMismatch records two values at the same path that failed to compare
// equal, or a structural problem (length mismatch, duplicate key, unkeyable
// element) discovered at that path
type ValueMismatch struct {
	Path         string      `json:"path"`
	Expected     interface{} `json:"expected"`
	Actual       interface{} `json:"actual"`
	ExpectedType string      `json:"expectedType,omitempty"`
	ActualType   string      `json:"actualType,omitempty"`
	Message      string      `json:"message"`
}

// TypeMismatch records two values at the same path with differing type tags
type TypeMismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Message  string `json:"message"`
}

// PatternCheck records the outcome of testing a string leaf against one
// configured pattern
type PatternCheck struct {
	Path          string `json:"path"`
	Value         string `json:"value"`
	Pattern       string `json:"pattern"`
	Message       string `json:"message,omitempty"`
	MatchedByName bool   `json:"matchedByName,omitempty"`
}

// Matched groups the positive findings of a comparison run
type Matched struct {
	Keys   []string     `json:"keys"`
	Values []ValueMatch `json:"values"`
}

// Unmatched groups the negative findings of a comparison run
type Unmatched struct {
	Keys   []KeyMismatch   `json:"keys"`
	Values []ValueMismatch `json:"values"`
	Types  []TypeMismatch  `json:"types"`
}

// RegexChecks groups pattern-validation outcomes
type RegexChecks struct {
	Passed []PatternCheck `json:"passed"`
	Failed []PatternCheck `json:"failed"`
}

// Summary holds statistics derived from the categorized findings
type Summary struct {
	MatchPercentage   float64 `json:"matchPercentage"`
	TotalKeysCompared int     `json:"totalKeysCompared"`
	TotalMatched      int     `json:"totalMatched"`
	TotalUnmatched    int     `json:"totalUnmatched"`
	TotalRegexChecks  int     `json:"totalRegexChecks"`
}

// Result accumulates the findings of one comparison run. It is created
// empty, appended to during the run, finalized by updateSummary & read-only
// afterwards. A new run gets a fresh Result so earlier snapshots stay valid
type Result struct {
	Matched     Matched     `json:"matched"`
	Unmatched   Unmatched   `json:"unmatched"`
	RegexChecks RegexChecks `json:"regexChecks"`
	Summary     Summary     `json:"summary"`

	// unmatched type entries count toward the summary only under strict
	// typing, set when the run begins
	strictTypes bool
}

func newResult(strictTypes bool) *Result {
	return &Result{
		Matched:     Matched{Keys: []string{}, Values: []ValueMatch{}},
		Unmatched:   Unmatched{Keys: []KeyMismatch{}, Values: []ValueMismatch{}, Types: []TypeMismatch{}},
		RegexChecks: RegexChecks{Passed: []PatternCheck{}, Failed: []PatternCheck{}},
		Summary:     Summary{MatchPercentage: 100},
		strictTypes: strictTypes,
	}
}

func (r *Result) addMatchedKey(path string) {
	r.Matched.Keys = append(r.Matched.Keys, path)
}

func (r *Result) addMatchedValue(m ValueMatch) {
	r.Matched.Values = append(r.Matched.Values, m)
}

func (r *Result) addUnmatchedKey(m KeyMismatch) {
	r.Unmatched.Keys = append(r.Unmatched.Keys, m)
}

func (r *Result) addUnmatchedValue(m ValueMismatch) {
	r.Unmatched.Values = append(r.Unmatched.Values, m)
}

func (r *Result) addUnmatchedType(m TypeMismatch) {
	r.Unmatched.Types = append(r.Unmatched.Types, m)
}

func (r *Result) addPatternPass(c PatternCheck) {
	r.RegexChecks.Passed = append(r.RegexChecks.Passed, c)
}

func (r *Result) addPatternFail(c PatternCheck) {
	r.RegexChecks.Failed = append(r.RegexChecks.Failed, c)
}

// updateSummary recomputes derived statistics from the current categories.
// idempotent, safe to call after each accumulation phase
func (r *Result) updateSummary() {
	// matched value entries, not matched key entries, drive the
	// percentage: a key present on both sides whose values differ counts
	// once, on the unmatched side
	s := &r.Summary
	s.TotalMatched = len(r.Matched.Values)
	s.TotalUnmatched = len(r.Unmatched.Keys) + len(r.Unmatched.Values)
	if r.strictTypes {
		s.TotalUnmatched += len(r.Unmatched.Types)
	}
	s.TotalKeysCompared = s.TotalMatched + s.TotalUnmatched
	if s.TotalKeysCompared == 0 {
		s.MatchPercentage = 100
	} else {
		s.MatchPercentage = float64(s.TotalMatched) / float64(s.TotalKeysCompared) * 100
	}
	s.TotalRegexChecks = len(r.RegexChecks.Passed) + len(r.RegexChecks.Failed)
}
