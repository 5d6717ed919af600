package deepmatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// markers for terminal report lines
const (
	markerMissing = "-" // present in first value only
	markerExtra   = "+" // present in second value only
	markerChanged = "~" // values or types differ
	markerFailed  = "!" // failed pattern check
	markerClose   = "close"
)

// FormatPrettyString is a convenience wrapper that outputs to a string
// instead of an io.Writer
func FormatPrettyString(res *Result, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, res, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a text report of every negative finding to w,
// followed by a summary line. if colorTTY is true it will add
// red "-" for keys missing from the second value
// green "+" for keys only in the second value
// blue "~" for changed values & types
// red "!" for failed pattern checks
func FormatPretty(w io.Writer, res *Result, colorTTY bool) error {
	var colorMap map[string]string

	if colorTTY {
		colorMap = map[string]string{
			markerClose: "\x1b[0m", // end color tag

			markerMissing: "\x1b[31m", // red
			markerExtra:   "\x1b[32m", // green
			markerChanged: "\x1b[34m", // blue
			markerFailed:  "\x1b[31m", // red
		}
	}

	for _, km := range res.Unmatched.Keys {
		marker := markerMissing
		if km.Message == extraKeyMessage {
			marker = markerExtra
		}
		if err := formatLine(w, colorMap, marker, km.Path, km.Message); err != nil {
			return err
		}
	}
	for _, vm := range res.Unmatched.Values {
		detail := vm.Message
		if vm.Expected != nil || vm.Actual != nil {
			detail = fmt.Sprintf("%s: expected %s, got %s", vm.Message, jsonStr(vm.Expected), jsonStr(vm.Actual))
		}
		if err := formatLine(w, colorMap, markerChanged, vm.Path, detail); err != nil {
			return err
		}
	}
	for _, tm := range res.Unmatched.Types {
		if err := formatLine(w, colorMap, markerChanged, tm.Path, tm.Message); err != nil {
			return err
		}
	}
	for _, pc := range res.RegexChecks.Failed {
		if err := formatLine(w, colorMap, markerFailed, pc.Path, pc.Message); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, FormatPrettySummary(&res.Summary, colorTTY))
	return err
}

func formatLine(w io.Writer, colorMap map[string]string, marker, path, detail string) error {
	_, err := fmt.Fprintf(w, "%s%s %s: %s%s\n", colorMap[marker], marker, path, detail, colorMap[markerClose])
	return err
}

func jsonStr(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// FormatPrettySummary prints a one-line digest of a summary. pass color
// for ANSI color tags
func FormatPrettySummary(s *Summary, color bool) string {
	var pctColor, neutralColor, closeColor string

	if s == nil {
		return ""
	}

	if color {
		pctColor = "\x1b[32m" // green
		if s.TotalUnmatched > 0 {
			pctColor = "\x1b[31m" // red
		}
		neutralColor = "\x1b[37m"
		closeColor = "\x1b[0m"
	}

	buf := &bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("%s%.1f%% match.%s", pctColor, s.MatchPercentage, closeColor))

	keysWord := "keys"
	if s.TotalKeysCompared == 1 {
		keysWord = "key"
	}
	buf.WriteString(fmt.Sprintf(" %s%d %s compared.%s", neutralColor, s.TotalKeysCompared, keysWord, closeColor))

	matchesWord := "matches"
	if s.TotalMatched == 1 {
		matchesWord = "match"
	}
	buf.WriteString(fmt.Sprintf(" %s%d %s.%s", neutralColor, s.TotalMatched, matchesWord, closeColor))

	mismatchesWord := "mismatches"
	if s.TotalUnmatched == 1 {
		mismatchesWord = "mismatch"
	}
	buf.WriteString(fmt.Sprintf(" %s%d %s.%s", neutralColor, s.TotalUnmatched, mismatchesWord, closeColor))

	if s.TotalRegexChecks > 0 {
		checksWord := "checks"
		if s.TotalRegexChecks == 1 {
			checksWord = "check"
		}
		buf.WriteString(fmt.Sprintf(" %s%d regex %s.%s", neutralColor, s.TotalRegexChecks, checksWord, closeColor))
	}

	buf.WriteRune('\n')

	return buf.String()
}
