package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parse matches value exactly against allowed after trimming surrounding space.
func parse[T ~string](kind, value string, allowed []T) (T, error) {
	candidate := T(strings.TrimSpace(value))
	if slices.Contains(allowed, candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid %s %q", kind, value)
}
