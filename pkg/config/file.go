package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".profilespectre.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".profilespectre.yml"
)

// FileConfig represents values loaded from a .profilespectre.yaml file.
type FileConfig struct {
	APIEndpoint     string   `yaml:"api_endpoint"`
	APIURL          string   `yaml:"api_url"`
	Project         string   `yaml:"project"`
	ExcludeProfiles []string `yaml:"exclude_profiles"`
	OutputDir       string   `yaml:"output_dir"`
	Backup          *bool    `yaml:"backup"`
	CSV             *bool    `yaml:"csv"`
	Timeout         string   `yaml:"timeout"`
	RateLimit       *int     `yaml:"rate_limit"`
	AuditLog        string   `yaml:"audit_log"`
}

// Endpoint returns the first configured API endpoint.
func (fc *FileConfig) Endpoint() string {
	if fc == nil {
		return ""
	}
	if endpoint := strings.TrimSpace(fc.APIEndpoint); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(fc.APIURL)
}

// Normalize trims and removes empty items from list fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.ExcludeProfiles = normalizeList(fc.ExcludeProfiles)
	fc.APIEndpoint = strings.TrimSpace(fc.APIEndpoint)
	fc.APIURL = strings.TrimSpace(fc.APIURL)
	fc.Project = strings.TrimSpace(fc.Project)
	fc.OutputDir = strings.TrimSpace(fc.OutputDir)
	fc.Timeout = strings.TrimSpace(fc.Timeout)
	fc.AuditLog = strings.TrimSpace(fc.AuditLog)
}

// ApplyTo copies file values into cfg for every setting whose flag was not
// explicitly set. changed reports whether a flag was given on the command line.
func (fc *FileConfig) ApplyTo(cfg *Config, changed func(flag string) bool) error {
	if fc == nil || cfg == nil {
		return nil
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if endpoint := fc.Endpoint(); endpoint != "" && !changed("api-endpoint") {
		cfg.APIEndpoint = endpoint
	}
	if fc.Project != "" && !changed("project") {
		cfg.Project = fc.Project
	}
	if len(fc.ExcludeProfiles) > 0 && !changed("exclude") {
		cfg.ExcludeProfiles = append([]string{}, fc.ExcludeProfiles...)
	}
	if fc.OutputDir != "" && !changed("output") {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.Backup != nil && !changed("backup") {
		cfg.Backup = *fc.Backup
	}
	if fc.CSV != nil && !changed("csv") {
		cfg.CSV = *fc.CSV
	}
	if fc.RateLimit != nil && !changed("rate-limit") {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.AuditLog != "" && !changed("audit-log") {
		cfg.AuditLog = fc.AuditLog
	}
	if fc.Timeout != "" && !changed("timeout") {
		timeout, err := ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		cfg.Timeout = timeout
	}

	return nil
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
