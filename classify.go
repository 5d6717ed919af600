package deepmatch

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// valueKind defines all of the atoms in our universe, or the shapes of data
// we will encounter while walking a pair of trees
type valueKind uint8

const (
	kindUnknown valueKind = iota
	kindNull
	kindObject
	kindArray
	kindString
	kindNumber
	kindBool
	kindDate
	kindRegex
	kindOther
)

// classify buckets a value into a valueKind, computed once per visited value
// & branched on instead of scattering type assertions through the engine
func classify(v interface{}) valueKind {
	switch v.(type) {
	case nil:
		return kindNull
	case map[string]interface{}:
		return kindObject
	case []interface{}:
		return kindArray
	case string:
		return kindString
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return kindNumber
	case bool:
		return kindBool
	case time.Time, *time.Time:
		return kindDate
	case *regexp.Regexp:
		return kindRegex
	default:
		return kindOther
	}
}

// typeTag names a value's detailed type for report entries. null, array,
// date & regex get dedicated tags, other non-plain-object instances fall
// back to a lower-cased type name, everything else uses the primitive name
func typeTag(v interface{}) string {
	switch classify(v) {
	case kindNull:
		return "null"
	case kindObject:
		return "object"
	case kindArray:
		return "array"
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	case kindDate:
		return "date"
	case kindRegex:
		return "regex"
	default:
		t := reflect.TypeOf(v)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		name := t.Name()
		if name == "" {
			name = t.Kind().String()
		}
		return strings.ToLower(name)
	}
}

// isContainer reports whether a value is a plain object or array, the two
// shapes the engine recurses into
func isContainer(v interface{}) bool {
	k := classify(v)
	return k == kindObject || k == kindArray
}

// stringify produces the serialized form of a value used for set-membership
// keys & synthetic key-match path segments. containers serialize as JSON,
// scalars print naturally so `1` and `"1"` stay distinct from each other
// only when quoted forms matter (set keys pass primitives through raw
// instead of calling this)
func stringify(v interface{}) string {
	switch classify(v) {
	case kindNull:
		return "null"
	case kindObject, kindArray:
		data, err := json.Marshal(v)
		if err != nil {
			// unmarshalable containers (channels etc) are undefined behavior,
			// print the go value rather than failing the run
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// asFloat attempts numeric interpretation of a scalar for loose equality
func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		// full-string parse so "1abc" is not the number 1
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// strictEqual is exact value equality: no cross-type coercion, numeric
// values compare numerically so decoded `1` and `1.0` agree
func strictEqual(v1, v2 interface{}) bool {
	if f1, ok := asFloat(v1); ok && classify(v1) == kindNumber {
		if f2, ok := asFloat(v2); ok && classify(v2) == kindNumber {
			return f1 == f2
		}
		return false
	}
	return reflect.DeepEqual(v1, v2)
}

// looseEqual is type-coercing equality in the spirit of loosely-typed
// comparison: null only equals null, numbers, bools & numeric strings
// compare through their numeric interpretation, everything else falls back
// to string forms
func looseEqual(v1, v2 interface{}) bool {
	k1, k2 := classify(v1), classify(v2)
	if k1 == kindNull || k2 == kindNull {
		return k1 == k2
	}
	if reflect.DeepEqual(v1, v2) {
		return true
	}
	if f1, ok1 := asFloat(v1); ok1 {
		if f2, ok2 := asFloat(v2); ok2 {
			return f1 == f2
		}
	}
	return stringify(v1) == stringify(v2)
}
