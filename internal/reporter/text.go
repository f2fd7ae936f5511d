package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

const textFileName = "report.txt"

// WriteText writes the text report to report.txt and, colored when out is a
// terminal, to out.
func WriteText(report *models.Report, cfg *config.Config, out io.Writer) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if out == nil {
		return fmt.Errorf("writer is nil")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// report.txt never carries escape sequences
	outputPath := filepath.Join(cfg.OutputDir, textFileName)
	if err := os.WriteFile(outputPath, []byte(renderTextReport(report, false)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", textFileName, err)
	}

	if _, err := io.WriteString(out, renderTextReport(report, supportsANSI(out))); err != nil {
		return fmt.Errorf("failed to write text report to output: %w", err)
	}

	return nil
}

func renderTextReport(report *models.Report, useANSI bool) string {
	var b strings.Builder

	generatedAt := strings.TrimSpace(report.Timestamp)
	if generatedAt == "" {
		if !report.Metadata.GeneratedAt.IsZero() {
			generatedAt = report.Metadata.GeneratedAt.UTC().Format(time.RFC3339)
		} else {
			generatedAt = "unknown"
		}
	}

	mode := string(report.Metadata.Mode)
	if mode == "" {
		mode = string(models.ModeAnalyze)
	}
	if report.Metadata.DryRun {
		mode += " (dry run)"
	}

	writeTextSectionHeader(&b, "Cluster Profile Report", useANSI)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt)
	fmt.Fprintf(&b, "Mode: %s\n", mode)
	fmt.Fprintf(&b, "API endpoint: %s\n", valueOr(report.Metadata.APIEndpoint, "unknown"))
	fmt.Fprintf(&b, "Project filter: %s\n", valueOr(report.Metadata.ProjectFilter, "all"))
	if report.Metadata.ProfileFilter != "" {
		fmt.Fprintf(&b, "Profile filter: %s\n", report.Metadata.ProfileFilter)
	}
	b.WriteString("\n")

	if len(report.Outcomes) == 0 {
		b.WriteString("No profiles processed.\n")
	} else {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(csvHeader, "\t"))
		for _, o := range report.Outcomes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				o.Name,
				valueOr(o.Version, "-"),
				o.Scope,
				valueOr(o.Project, "-"),
				colorStatus(o.Status, useANSI),
				o.UIDOrAction(),
			)
		}
		_ = tw.Flush()
	}
	b.WriteString("\n")

	summary := models.Summarize(report.Outcomes)
	writeTextSectionHeader(&b, "Summary", useANSI)
	fmt.Fprintf(&b, "Profiles found: %d\n", report.Metadata.ProfilesFound)
	fmt.Fprintf(&b, "Out of scope: %d\n", report.Metadata.ProfilesSkipped)
	fmt.Fprintf(&b, "Processed: %d\n", summary.Total)
	fmt.Fprintf(&b, "Unused: %d\n", summary.Unused)
	fmt.Fprintf(&b, "In use: %d\n", summary.InUse)
	if report.Metadata.Mode == models.ModeCleanup {
		fmt.Fprintf(&b, "Deleted: %d\n", summary.Deleted)
	}
	fmt.Fprintf(&b, "Failed: %d\n", summary.Failed)

	if len(report.Errors) > 0 {
		b.WriteString("\n")
		writeTextSectionHeader(&b, "Errors", useANSI)
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	return b.String()
}

func writeTextSectionHeader(b *strings.Builder, title string, useANSI bool) {
	header := title
	if useANSI {
		bold := color.New(color.Bold)
		bold.EnableColor()
		header = bold.Sprint(title)
	}
	fmt.Fprintf(b, "%s\n", header)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
}

func colorStatus(status models.Status, useANSI bool) string {
	if !useANSI {
		return string(status)
	}

	var c *color.Color
	switch status {
	case models.StatusUnused:
		c = color.New(color.FgYellow)
	case models.StatusInUse:
		c = color.New(color.FgGreen)
	case models.StatusDeleted:
		c = color.New(color.FgCyan)
	case models.StatusFailed:
		c = color.New(color.FgRed)
	default:
		return string(status)
	}
	// the table decides on color, not fatih/color's own stdout detection
	c.EnableColor()
	return c.Sprint(status)
}

func supportsANSI(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
