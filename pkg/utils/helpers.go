package utils

import (
	"fmt"
	"time"
)

// ParseDuration parses a duration string like "5m". An empty string yields def;
// a malformed one yields def and an error.
func ParseDuration(d string, def time.Duration) (time.Duration, error) {
	if d == "" {
		return def, nil
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return def, fmt.Errorf("invalid duration %q: %w", d, err)
	}
	return duration, nil
}
