package agent

import (
	"strconv"
	"strings"

	"github.com/wilhg/actionskills/pkg/errmodel"
)

// Args is the flat parameter map of one invocation (name -> raw string value).
type Args map[string]string

// Get returns the value for key and whether it was present.
func (a Args) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// String returns the value for key or "" when absent.
func (a Args) String(key string) string { return a[key] }

// Int parses key as a base-10 integer. Absent or empty values yield def.
func (a Args) Int(key string, def int) (int, error) {
	v := strings.TrimSpace(a[key])
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errmodel.Validation("invalid_parameter", "Invalid value for "+key+": "+strconv.Quote(v)+" is not an integer", map[string]any{"parameter": key})
	}
	return n, nil
}

// Missing returns the keys that are absent or empty, in the order given.
func (a Args) Missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if a[k] == "" {
			out = append(out, k)
		}
	}
	return out
}

// RequireAll fails with a missing_fields validation error naming every absent key,
// comma-joined in declaration order.
func (a Args) RequireAll(keys ...string) error {
	missing := a.Missing(keys...)
	if len(missing) == 0 {
		return nil
	}
	return errmodel.Validation("missing_fields", "Missing required parameters: "+strings.Join(missing, ", "), map[string]any{"fields": missing})
}

// Require fails when a single key is absent or empty.
func (a Args) Require(key string) error {
	if a[key] != "" {
		return nil
	}
	return errmodel.Validation("missing_fields", "Missing required parameter: "+key, map[string]any{"fields": []string{key}})
}

func (a Args) asAny() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
