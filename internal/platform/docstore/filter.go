package docstore

import (
	"encoding/json"
	"regexp"
	"sort"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Filter matches documents whose top-level string fields equal the given values.
// An empty filter matches everything.
type Filter map[string]string

// Matches reports whether the JSON body satisfies every condition of the filter.
func (f Filter) Matches(body []byte) bool {
	if len(f) == 0 {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	for key, want := range f {
		got, ok := fields[key].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Keys returns the filter fields in a stable order.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects field names that cannot be embedded in a backend query path.
func (f Filter) Validate() error {
	for key := range f {
		if !fieldPattern.MatchString(key) {
			return &InvalidFieldError{Field: key}
		}
	}
	return nil
}

// InvalidFieldError reports an unusable filter field name.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return "invalid filter field " + `"` + e.Field + `"`
}
