package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/profilespectre/internal/api"
	"github.com/ppiankov/profilespectre/internal/app"
	"github.com/ppiankov/profilespectre/internal/cleanup"
	"github.com/ppiankov/profilespectre/internal/collector"
	"github.com/ppiankov/profilespectre/internal/logging"
	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/internal/projects"
	"github.com/ppiankov/profilespectre/internal/prompt"
	"github.com/ppiankov/profilespectre/internal/reporter"
	"github.com/ppiankov/profilespectre/pkg/config"
)

const defaultAuditLogValue = "default"

// runOptions holds the flags shared by analyze and cleanup.
type runOptions struct {
	cfg        *config.Config
	timeoutStr string
	configPath string
}

func newRunOptions() *runOptions {
	return &runOptions{cfg: config.DefaultConfig()}
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	cfg := o.cfg

	// API flags
	cmd.Flags().StringVar(&cfg.APIEndpoint, "api-endpoint", cfg.APIEndpoint, "Management API endpoint")
	cmd.Flags().StringVar(&cfg.APIKey, "api-key", "", "API key (or "+config.APIKeyEnv+" / .env)")
	cmd.Flags().StringVar(&o.timeoutStr, "timeout", "30s", "Per-request timeout (e.g., 30s, 2m)")
	cmd.Flags().IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Max API requests per second (0 = unlimited)")

	// Selection flags
	cmd.Flags().StringVar(&cfg.Project, "project", "", "Only process profiles of this project (by name)")
	cmd.Flags().StringVar(&cfg.Profile, "profile", "", "Only process profiles with this name")
	cmd.Flags().StringSliceVar(&cfg.ExcludeProfiles, "exclude", nil, "Profile name patterns to skip (glob, repeatable)")

	// Output flags
	cmd.Flags().StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Output directory")
	cmd.Flags().BoolVar(&cfg.CSV, "csv", false, "Also write report.csv")
	cmd.Flags().StringVar(&cfg.AuditLog, "audit-log", "", `Append a JSON audit trail to this file ("default" for the app config dir)`)
	cmd.Flags().StringVar(&o.configPath, "config", "", "Path to config file (default: .profilespectre.yaml in CWD or HOME)")
}

// prepare merges the config file under explicit flags and validates the result.
func (o *runOptions) prepare(cmd *cobra.Command) error {
	var (
		fileCfg *config.FileConfig
		path    string
		err     error
	)
	if strings.TrimSpace(o.configPath) != "" {
		path = o.configPath
		fileCfg, err = config.LoadFile(path)
	} else {
		fileCfg, path, err = config.AutoLoadFile()
	}
	if err != nil {
		return err
	}
	if fileCfg != nil {
		slog.Debug("loaded config file", slog.String("path", path))
		if err := fileCfg.ApplyTo(o.cfg, cmd.Flags().Changed); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("timeout") || fileCfg == nil || fileCfg.Timeout == "" {
		timeout, err := config.ParseDuration(o.timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid --timeout duration: %w", err)
		}
		o.cfg.Timeout = timeout
	}

	if o.cfg.RateLimit < 0 {
		return fmt.Errorf("--rate-limit must be >= 0, got %d", o.cfg.RateLimit)
	}

	if o.cfg.AuditLog == defaultAuditLogValue {
		auditPath, err := app.DefaultAuditLogPath()
		if err != nil {
			return fmt.Errorf("failed to resolve default audit log path: %w", err)
		}
		o.cfg.AuditLog = auditPath
	}

	o.cfg.Verbose = verbose
	o.cfg.Normalize()
	if err := o.cfg.ResolveAPIKey(); err != nil {
		return err
	}

	// main closes the audit trail after logging the command's final error.
	_ = closeAuditLog()
	closer, err := logging.InitWithAudit(o.cfg.Verbose, o.cfg.AuditLog)
	if err != nil {
		return err
	}
	auditLog = closer
	return nil
}

// runWorkflow executes one analyze or cleanup run and writes the report.
func runWorkflow(ctx context.Context, cfg *config.Config, mode models.Mode, prompter prompt.Prompter, out io.Writer) (*models.Report, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	registry := projects.NewRegistry(client, projects.DefaultRegistryTTL)
	var projectUID string
	if cfg.HasProjectFilter() {
		fmt.Fprintf(out, "Resolving project %q...\n", cfg.Project)
		projectUID, err = projects.NewResolver(registry).Resolve(ctx, cfg.Project)
		if err != nil {
			return nil, err
		}
	}

	fmt.Fprintln(out, "Collecting cluster profiles...")
	col := collector.New(cfg, client, registry, projectUID)
	orchestrator := cleanup.New(cfg, client, col, cleanup.Options{
		Mode:       mode,
		ProjectUID: projectUID,
		Prompter:   prompter,
		Progress:   out,
	})

	result, runErr := orchestrator.Run(ctx)
	if result == nil {
		return nil, runErr
	}

	report := buildReport(cfg, client.BaseURL(), result)
	if err := reporter.NewWithWriter(cfg, out).Generate(report); err != nil {
		return report, errors.Join(runErr, fmt.Errorf("failed to generate report: %w", err))
	}
	if runErr != nil {
		return report, runErr
	}

	if perItem := result.Err(); perItem != nil {
		slog.Warn("run completed with per-profile errors",
			slog.Int("errors", len(result.Errors)),
			slog.String("run_id", result.RunID),
		)
	}
	fmt.Fprintf(out, "Report written to: %s\n", cfg.OutputDir)
	return report, nil
}

// buildReport constructs the final report
func buildReport(cfg *config.Config, endpoint string, result *cleanup.Result) *models.Report {
	outcomes := result.Outcomes
	if outcomes == nil {
		outcomes = []models.OutcomeRecord{}
	}
	deleted := result.Deleted
	if deleted == nil {
		deleted = []models.DeletedItem{}
	}

	var errs []string
	for _, err := range result.Errors {
		errs = append(errs, err.Error())
	}

	return &models.Report{
		Tool:      "profilespectre",
		Version:   version,
		Timestamp: result.StartedAt.UTC().Format(time.RFC3339),
		Metadata: models.Metadata{
			RunID:            result.RunID,
			Mode:             result.Mode,
			GeneratedAt:      time.Now().UTC(),
			APIEndpoint:      endpoint,
			ProjectFilter:    cfg.Project,
			ProfileFilter:    cfg.Profile,
			ProfilesFound:    result.ProfilesFound,
			ProfilesSkipped:  result.ProfilesSkipped,
			AnalysisDuration: result.Duration.Round(time.Millisecond).String(),
			BackupsEnabled:   cfg.Backup,
			DryRun:           cfg.DryRun,
		},
		Outcomes: outcomes,
		Deleted:  deleted,
		Errors:   errs,
	}
}

func printSummary(out io.Writer, report *models.Report) {
	summary := models.Summarize(report.Outcomes)
	fmt.Fprintf(out, "Done: %d processed, %d unused, %d in use, %d deleted, %d failed (run %s)\n",
		summary.Total, summary.Unused, summary.InUse, summary.Deleted, summary.Failed, report.Metadata.RunID)
}
