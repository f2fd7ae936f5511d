package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseDuration parses a duration string with support for days (d).
// Examples: "45s", "2m", "1h", "1d". Anything else falls back to
// time.ParseDuration. Negative and zero values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	value := strings.TrimSpace(s)
	matches := durationPattern.FindStringSubmatch(value)

	var d time.Duration
	if matches == nil {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return 0, err
		}
		d = parsed
	} else {
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration value: %s", matches[1])
		}
		switch matches[2] {
		case "s":
			d = time.Duration(n) * time.Second
		case "m":
			d = time.Duration(n) * time.Minute
		case "h":
			d = time.Duration(n) * time.Hour
		case "d":
			d = time.Duration(n) * 24 * time.Hour
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", s)
	}
	return d, nil
}
