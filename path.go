package deepmatch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Paths address locations inside a compared tree. object traversal appends
// ".key", array traversal appends "[index]", key-matched array traversal
// appends a synthetic "[keyName=value]" segment. The root path is the empty
// string & children of root carry no leading separator.

// joinKey builds the path of an object member
func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// joinIndex builds the path of an array element under exact & set strategies
func joinIndex(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// joinKeyMatch builds the synthetic path of a key-matched array element
func joinKeyMatch(path, keyName string, keyValue interface{}) string {
	return fmt.Sprintf("%s[%s=%s]", path, keyName, stringify(keyValue))
}

// KeyNameOf extracts the trailing key name of a path: the segment after the
// last "." and before any "[". KeyNameOf("a.b[0]") is "b"
func KeyNameOf(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.Index(path, "["); i >= 0 {
		path = path[:i]
	}
	return path
}

// AllPaths produces every terminal path reachable in a value, using the same
// segment rules the comparison engine uses. A leaf value yields its own
// path, as do empty objects & arrays
func AllPaths(v interface{}) []string {
	var paths []string
	collectPaths(v, "", &paths)
	return paths
}

func collectPaths(v interface{}, path string, acc *[]string) {
	switch x := v.(type) {
	case map[string]interface{}:
		if len(x) == 0 {
			*acc = append(*acc, path)
			return
		}
		// sorted for stable output
		keys := make([]string, 0, len(x))
		for key := range x {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectPaths(x[key], joinKey(path, key), acc)
		}
	case []interface{}:
		if len(x) == 0 {
			*acc = append(*acc, path)
			return
		}
		for i, el := range x {
			collectPaths(el, joinIndex(path, i), acc)
		}
	default:
		*acc = append(*acc, path)
	}
}

// segment is one parsed step of a path string
type segment struct {
	key      string // object key, or the key name of a key-match
	index    int
	keyValue string // stringified key value of a key-match segment
	kind     segmentKind
}

type segmentKind uint8

const (
	segKey segmentKind = iota
	segIndex
	segKeyMatch
)

// parsePath splits a path string into segments. paths containing keys with
// literal "." "[" or "]" characters are not representable & won't resolve
func parsePath(path string) ([]segment, error) {
	var segs []segment
	for i := 0; i < len(path); {
		switch {
		case path[i] == '.':
			i++
			if i >= len(path) || path[i] == '.' {
				return nil, fmt.Errorf("empty segment in path %q", path)
			}
		case path[i] == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated bracket in path %q", path)
			}
			body := path[i+1 : i+end]
			i += end + 1
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				segs = append(segs, segment{kind: segKeyMatch, key: body[:eq], keyValue: body[eq+1:]})
			} else {
				idx, err := strconv.Atoi(body)
				if err != nil {
					return nil, fmt.Errorf("invalid index %q in path %q", body, path)
				}
				segs = append(segs, segment{kind: segIndex, index: idx})
			}
		default:
			start := i
			for i < len(path) && path[i] != '.' && path[i] != '[' {
				i++
			}
			segs = append(segs, segment{kind: segKey, key: path[start:i]})
		}
	}
	return segs, nil
}

// ValueAt resolves a path back to the value it denotes inside v. The second
// return is false when any segment is missing or the traversal reaches a
// non-container before the path is exhausted
func ValueAt(v interface{}, path string) (interface{}, bool) {
	if path == "" {
		return v, true
	}
	segs, err := parsePath(path)
	if err != nil {
		return nil, false
	}

	elem := v
	for _, seg := range segs {
		switch seg.kind {
		case segKey:
			obj, ok := elem.(map[string]interface{})
			if !ok {
				return nil, false
			}
			if elem, ok = obj[seg.key]; !ok {
				return nil, false
			}
		case segIndex:
			arr, ok := elem.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			elem = arr[seg.index]
		case segKeyMatch:
			arr, ok := elem.([]interface{})
			if !ok {
				return nil, false
			}
			found := false
			for _, el := range arr {
				obj, ok := el.(map[string]interface{})
				if !ok {
					continue
				}
				if kv, ok := obj[seg.key]; ok && kv != nil && stringify(kv) == seg.keyValue {
					elem = el
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		}
	}
	return elem, true
}
