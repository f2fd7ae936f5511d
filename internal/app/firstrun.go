package app

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	markerFileName = "first_run_completed"
	appName        = "profilespectre"
	auditFileName  = "audit.log"
)

// GetAppConfigDir returns the path to the application's configuration directory.
func GetAppConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// DefaultAuditLogPath is where --audit-log=default writes.
func DefaultAuditLogPath() (string, error) {
	dir, err := GetAppConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, auditFileName), nil
}

// IsFirstRun reports whether the marker file was missing, creating it.
func IsFirstRun() bool {
	appConfigDir, err := GetAppConfigDir()
	if err != nil {
		slog.Debug("failed to get app config directory", slog.String("error", err.Error()))
		return false
	}
	return isFirstRunIn(appConfigDir)
}

func isFirstRunIn(appConfigDir string) bool {
	markerFilePath := filepath.Join(appConfigDir, markerFileName)

	_, err := os.Stat(markerFilePath)
	if err == nil {
		slog.Debug("marker file exists, not first run", slog.String("path", markerFilePath))
		return false
	}
	if !os.IsNotExist(err) {
		slog.Error("failed to check first run marker file", slog.String("path", markerFilePath), slog.String("error", err.Error()))
		return false
	}

	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		slog.Error("failed to create app config directory", slog.String("path", appConfigDir), slog.String("error", err.Error()))
		return false
	}
	marker, err := os.Create(markerFilePath)
	if err != nil {
		slog.Error("failed to create first run marker file", slog.String("path", markerFilePath), slog.String("error", err.Error()))
		return false
	}
	_ = marker.Close()

	slog.Debug("first run detected and marker created", slog.String("path", markerFilePath))
	return true
}
