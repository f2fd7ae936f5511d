package reporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

const csvFileName = "report.csv"

var csvHeader = []string{"Profile Name", "Version", "Scope", "Project", "Status", "UID/Action"}

// WriteCSV exports the outcome rows to report.csv.
func WriteCSV(report *models.Report, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(cfg.OutputDir, csvFileName)
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", csvFileName, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range report.Outcomes {
		row := []string{o.Name, o.Version, string(o.Scope), o.Project, string(o.Status), o.UIDOrAction()}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", o.UID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", csvFileName, err)
	}
	return file.Close()
}
