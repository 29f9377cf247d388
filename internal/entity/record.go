// ABOUTME: Record type shared by every entity kind plus value helpers
// ABOUTME: Dotted-path lookup, string casting and canonical string ids

package entity

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Record is one row of an entity collection: field name to JSON value.
// Numbers decode as float64. The id field is always a canonical string.
type Record map[string]any

// ID returns the record's canonical id.
func (r Record) ID() string {
	return CanonicalID(r["id"])
}

// Clone returns a copy of r. Nested maps and slices are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Lookup resolves a dotted path such as "address.city" against r.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for part := range strings.SplitSeq(path, ".") {
		var m map[string]any
		switch v := cur.(type) {
		case Record:
			m = v
		case map[string]any:
			m = v
		default:
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Text returns the string form of the value at path, or "" when absent.
func (r Record) Text(path string) string {
	v, _ := r.Lookup(path)
	return String(v)
}

// String casts a JSON value to the text a user would see for it.
// nil becomes the empty string.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	case map[string]any, Record, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// CanonicalID converts an id of any JSON type to its canonical string, so
// 3, 3.0 and "3" all compare equal.
func CanonicalID(v any) string {
	s := strings.TrimSpace(String(v))
	if n, err := strconv.ParseFloat(s, 64); err == nil && n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return s
}

// NumericID parses a canonical id as a positive integer.
func NumericID(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Normalize rewrites every record's id to its canonical string in place
// and returns recs for chaining.
func Normalize(recs []Record) []Record {
	for _, r := range recs {
		if r == nil {
			continue
		}
		if _, ok := r["id"]; ok {
			r["id"] = r.ID()
		}
	}
	return recs
}

// CloneAll copies the slice and every record in it.
func CloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
