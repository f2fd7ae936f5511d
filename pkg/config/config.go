package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// APIKeyEnv is the environment variable holding the API key.
const APIKeyEnv = "PROFILESPECTRE_API_KEY"

// ErrMissingAPIKey is returned when no API credential could be found.
var ErrMissingAPIKey = errors.New("API key is required (--api-key or " + APIKeyEnv + ")")

// Config holds all runtime configuration
type Config struct {
	// API settings
	APIEndpoint string
	APIKey      string
	Timeout     time.Duration
	RateLimit   int

	// Selection
	Project         string
	Profile         string
	ExcludeProfiles []string

	// Cleanup behaviour
	Backup    bool
	AssumeYes bool

	// Output settings
	OutputDir string
	CSV       bool
	AuditLog  string

	// Operational flags
	Verbose bool
	DryRun  bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		APIEndpoint:     "https://api.spectrocloud.com",
		Timeout:         30 * time.Second,
		RateLimit:       10,
		ExcludeProfiles: []string{},
		Backup:          false,
		AssumeYes:       false,
		OutputDir:       "./report",
		CSV:             false,
		Verbose:         false,
		DryRun:          false,
	}
}

// HasProjectFilter reports whether the run is restricted to one project.
func (c *Config) HasProjectFilter() bool {
	return c != nil && strings.TrimSpace(c.Project) != ""
}

// HasProfileFilter reports whether the run targets a single profile name.
func (c *Config) HasProfileFilter() bool {
	return c != nil && strings.TrimSpace(c.Profile) != ""
}

// ResolveAPIKey fills APIKey from the environment when no flag value was
// given. A .env file in the working directory is loaded first if present.
func (c *Config) ResolveAPIKey() error {
	if strings.TrimSpace(c.APIKey) != "" {
		c.APIKey = strings.TrimSpace(c.APIKey)
		return nil
	}

	// Missing .env is fine; variables already set in the environment win.
	_ = godotenv.Load()

	c.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
