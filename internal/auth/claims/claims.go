// Package claims walks raw provider payloads. Payloads are arbitrary
// decoded JSON (maps, lists, scalars) and the role-claim path is a
// dotted key sequence configured by the operator.
package claims

import (
	"fmt"
	"strings"
)

// Lookup walks m along the dotted path and reports whether every key
// was present. A missing key at any step returns (nil, false) rather
// than a zero value, so callers can distinguish "absent" from "empty".
func Lookup(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// StringSet coerces a claim value to a set of role strings. Only list
// values produce roles; scalars and maps yield an empty set.
func StringSet(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// String returns the claim under key as a string, or "" when absent
// or not a string.
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
