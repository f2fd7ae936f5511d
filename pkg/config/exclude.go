package config

import (
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"
)

// Normalize trims config patterns and removes empty values.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.ExcludeProfiles = normalizePatterns(c.ExcludeProfiles)
	c.APIEndpoint = strings.TrimRight(strings.TrimSpace(c.APIEndpoint), "/")
	c.Project = strings.TrimSpace(c.Project)
	c.Profile = strings.TrimSpace(c.Profile)
}

// IsProfileExcluded reports whether a profile name matches exclude patterns.
func (c *Config) IsProfileExcluded(name string) bool {
	if c == nil || len(c.ExcludeProfiles) == 0 {
		return false
	}

	value := normalizePattern(name)
	if value == "" {
		return false
	}

	for _, pattern := range c.ExcludeProfiles {
		if patternMatches(pattern, value) {
			return true
		}
	}

	return false
}

func normalizePatterns(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, pattern := range values {
		p := normalizePattern(pattern)
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}
	return normalized
}

func normalizePattern(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func patternMatches(pattern, value string) bool {
	normalizedPattern := normalizePattern(pattern)
	normalizedValue := normalizePattern(value)
	if normalizedPattern == "" || normalizedValue == "" {
		return false
	}
	return wildcard.Match(normalizedPattern, normalizedValue)
}
