package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one Airtable row as fetched: a stable record id plus an untyped
// fields mapping. It is the canonical input of every mapper and is never
// mutated after fetch.
type Record struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Fields is a loosely typed field mapping (string, number, bool or list,
// depending on the Airtable column type). Accessors never fail: a missing or
// malformed value degrades to the declared default so one bad cell cannot
// abort a full-catalog export.
type Fields map[string]any

// Str returns the trimmed string form of a field. Missing/nil -> "".
func (f Fields) Str(key string) string {
	return stringify(f[key])
}

// Int returns the field parsed as an integer (floats are truncated, like
// Airtable number columns exported as "19.0"). Missing/empty/unparsable -> def.
func (f Fields) Int(key string, def int) int {
	s := f.Str(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return int(v)
}

// Float returns the field as a float, or nil when the field is missing,
// empty, or not a number.
func (f Fields) Float(key string) *float64 {
	s := f.Str(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// List returns the field as a list of trimmed, non-empty strings. A scalar
// value is wrapped in a one-element list; missing/empty -> nil.
func (f Fields) List(key string) []string {
	switch v := f[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
