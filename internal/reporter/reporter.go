package reporter

import (
	"io"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

// Reporter interface for generating reports
type Reporter interface {
	Generate(report *models.Report) error
}

// reporter implements the Reporter interface
type reporter struct {
	config *config.Config
	out    io.Writer
}

// NewWithWriter creates a reporter that prints the text table to out.
func NewWithWriter(cfg *config.Config, out io.Writer) Reporter {
	return &reporter{
		config: cfg,
		out:    out,
	}
}

// Generate writes report.json, the deleted manifest for cleanup runs, the
// optional CSV export and the text table.
func (r *reporter) Generate(report *models.Report) error {
	if err := WriteJSON(report, r.config); err != nil {
		return err
	}

	if report.Metadata.Mode == models.ModeCleanup {
		if err := WriteDeleted(report, r.config); err != nil {
			return err
		}
	}

	if r.config.CSV {
		if err := WriteCSV(report, r.config); err != nil {
			return err
		}
	}

	return WriteText(report, r.config, r.out)
}
