// Package backup writes per-profile backup files before deletion.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ppiankov/profilespectre/internal/models"
)

// DirName is the backup subdirectory under the output directory.
const DirName = "backups"

// TimestampLayout formats the run timestamp in backup file names.
const TimestampLayout = "20060102-150405"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportFunc fetches the structured export of a profile.
type ExportFunc func(ctx context.Context) ([]byte, error)

// Result describes a written backup.
type Result struct {
	Path     string
	Fallback bool // raw detail was written because export failed
}

// Writer writes backups for one run.
type Writer struct {
	dir   string
	runTS string
}

// NewWriter writes into <outputDir>/backups, stamping files with runAt.
func NewWriter(outputDir string, runAt time.Time) *Writer {
	return &Writer{
		dir:   filepath.Join(outputDir, DirName),
		runTS: runAt.UTC().Format(TimestampLayout),
	}
}

// Path returns the backup file for profile. The uid keeps same-named
// profiles from different projects apart.
func (w *Writer) Path(profile *models.Profile) string {
	name := fmt.Sprintf("%s_%s_%s_%s.json", sanitize(profile.Name), sanitize(profile.Version), sanitize(profile.UID), w.runTS)
	return filepath.Join(w.dir, name)
}

// Write stores the export of profile. If export fails, the raw detail payload
// is written to the same path instead. An error means neither could be written.
func (w *Writer) Write(ctx context.Context, profile *models.Profile, export ExportFunc, raw json.RawMessage) (Result, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := w.Path(profile)
	data, exportErr := export(ctx)
	if exportErr == nil && len(data) > 0 {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return Result{}, fmt.Errorf("failed to write backup %s: %w", path, err)
		}
		return Result{Path: path}, nil
	}
	if exportErr == nil {
		exportErr = errors.New("empty export payload")
	}

	slog.Warn("profile export failed, writing raw detail instead",
		slog.String("name", profile.Name),
		slog.String("uid", profile.UID),
		slog.String("error", exportErr.Error()),
	)

	if len(raw) == 0 {
		return Result{}, fmt.Errorf("export failed and no detail snapshot available: %w", exportErr)
	}

	snapshot, err := indent(raw)
	if err != nil {
		snapshot = raw
	}
	if err := os.WriteFile(path, snapshot, 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write raw backup %s: %w", path, errors.Join(exportErr, err))
	}
	return Result{Path: path, Fallback: true}, nil
}

func indent(raw json.RawMessage) ([]byte, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func sanitize(value string) string {
	cleaned := unsafeNameChars.ReplaceAllString(value, "-")
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}
