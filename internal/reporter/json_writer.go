package reporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

const (
	reportFileName  = "report.json"
	deletedFileName = "deleted_profiles.json"
)

// WriteJSON writes the report to a JSON file
func WriteJSON(report *models.Report, cfg *config.Config) error {
	return writeJSONFile(cfg.OutputDir, reportFileName, report)
}

// WriteDeleted writes the deleted-profiles manifest. An empty run still
// produces an empty list.
func WriteDeleted(report *models.Report, cfg *config.Config) error {
	deleted := report.Deleted
	if deleted == nil {
		deleted = []models.DeletedItem{}
	}
	return writeJSONFile(cfg.OutputDir, deletedFileName, deleted)
}

func writeJSONFile(dir, name string, payload any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	outputPath := filepath.Join(dir, name)
	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	slog.Debug("report file written", slog.String("path", outputPath))
	return nil
}
