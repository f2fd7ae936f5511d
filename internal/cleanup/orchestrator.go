// Package cleanup drives the analyze and cleanup workflows over aggregated profiles.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/ppiankov/profilespectre/internal/analyzer"
	"github.com/ppiankov/profilespectre/internal/backup"
	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/internal/prompt"
	"github.com/ppiankov/profilespectre/pkg/config"
)

// ErrAborted is returned when the operator declines the cleanup gate.
var ErrAborted = errors.New("cleanup aborted by operator")

// API is the subset of the management API the orchestrator calls per profile.
type API interface {
	GetProfile(ctx context.Context, uid, projectUID string) (*models.ProfileDetail, error)
	DeleteProfile(ctx context.Context, uid, projectUID string) error
	ExportProfile(ctx context.Context, uid, projectUID string) ([]byte, error)
}

// Aggregator produces the candidate profile snapshot.
type Aggregator interface {
	Collect(ctx context.Context) ([]*models.Profile, error)
	Errors() []error
}

// Options configures a run.
type Options struct {
	Mode       models.Mode
	ProjectUID string // resolved uid of the project filter
	Prompter   prompt.Prompter
	Progress   io.Writer
	Now        func() time.Time
}

// Result is everything a run produced.
type Result struct {
	RunID           string
	Mode            models.Mode
	StartedAt       time.Time
	Duration        time.Duration
	ProfilesFound   int
	ProfilesSkipped int
	Outcomes        []models.OutcomeRecord
	Deleted         []models.DeletedItem
	Errors          []error
}

// Err aggregates per-item failures. It is informational and does not mean
// the run failed.
func (r *Result) Err() error {
	return utilerrors.NewAggregate(r.Errors)
}

// Orchestrator processes profiles one at a time. It is not safe for
// concurrent use.
type Orchestrator struct {
	config     *config.Config
	api        API
	aggregator Aggregator
	opts       Options
	backups    *backup.Writer

	deleted sets.Set[string]
	result  *Result
}

// New creates an orchestrator.
func New(cfg *config.Config, api API, aggregator Aggregator, opts Options) *Orchestrator {
	if opts.Mode == "" {
		opts.Mode = models.ModeAnalyze
	}
	if opts.Prompter == nil {
		opts.Prompter = prompt.AutoApprove{}
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		config:     cfg,
		api:        api,
		aggregator: aggregator,
		opts:       opts,
	}
}

// Run aggregates, filters and processes every in-scope profile. Only an
// aggregation failure, an aborted gate or a cancelled context return an
// error; per-profile failures are recorded in the result. On cancellation
// the partial result is returned together with the error.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := o.opts.Now()
	o.deleted = sets.New[string]()
	o.backups = backup.NewWriter(o.config.OutputDir, start)
	o.result = &Result{
		RunID:     uuid.NewString(),
		Mode:      o.opts.Mode,
		StartedAt: start,
	}
	defer func() {
		o.result.Duration = o.opts.Now().Sub(start)
	}()

	slog.Info("run started",
		slog.String("run_id", o.result.RunID),
		slog.String("mode", string(o.opts.Mode)),
		slog.Bool("dry_run", o.config.DryRun),
	)

	profiles, err := o.aggregator.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect profiles: %w", err)
	}
	o.result.Errors = append(o.result.Errors, o.aggregator.Errors()...)
	o.result.ProfilesFound = len(profiles)

	candidates, skipped := analyzer.Filter(profiles, o.config)
	o.result.ProfilesSkipped = skipped
	fmt.Fprintf(o.opts.Progress, "Found %d profiles, %d in scope\n", len(profiles), len(candidates))

	if o.opts.Mode == models.ModeCleanup && len(candidates) > 0 && !o.config.AssumeYes {
		message := fmt.Sprintf("Check %d profiles and delete the unused ones?", len(candidates))
		if o.config.DryRun {
			message = fmt.Sprintf("Check %d profiles for cleanup (dry run, nothing is deleted)?", len(candidates))
		}
		ok, err := o.opts.Prompter.Confirm(ctx, message)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	for i, profile := range candidates {
		if err := ctx.Err(); err != nil {
			return o.result, err
		}
		if o.deleted.Has(profile.UID) {
			continue
		}

		fmt.Fprintf(o.opts.Progress, "[%d/%d] %s (%s)\n", i+1, len(candidates), profile.Name, profile.Version)
		if err := o.process(ctx, profile); err != nil {
			return o.result, err
		}
	}

	slog.Info("run finished",
		slog.String("run_id", o.result.RunID),
		slog.Int("processed", len(o.result.Outcomes)),
		slog.Int("deleted", len(o.result.Deleted)),
		slog.Int("errors", len(o.result.Errors)),
	)
	return o.result, nil
}

// process runs the per-profile state machine and records exactly one outcome.
// It returns an error only when the run must stop.
func (o *Orchestrator) process(ctx context.Context, profile *models.Profile) error {
	scopeUID := o.scopingUID(profile)

	detail, err := o.api.GetProfile(ctx, profile.UID, scopeUID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.fail(profile, models.ActionNone, fmt.Errorf("failed to fetch detail for %s (%s): %w", profile.Name, profile.UID, err))
		return nil
	}
	if profile.Version == "" && detail.Profile != nil {
		profile.Version = detail.Profile.Version
	}

	if analyzer.CheckUsage(detail) {
		action := models.ActionNone
		if o.opts.Mode == models.ModeCleanup {
			action = models.ActionSkipped
		}
		o.record(profile, models.StatusInUse, action)
		return nil
	}

	if o.opts.Mode == models.ModeAnalyze {
		o.record(profile, models.StatusUnused, models.ActionNone)
		return nil
	}

	if !o.config.AssumeYes {
		message := fmt.Sprintf("Delete unused profile %s version %s (%s)?", profile.Name, profile.Version, profile.ProjectDisplay())
		ok, err := o.opts.Prompter.Confirm(ctx, message)
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("deletion declined",
				slog.String("name", profile.Name),
				slog.String("uid", profile.UID),
			)
			outcome := o.outcome(profile, models.StatusInUse, models.ActionSkipped)
			outcome.Declined = true
			o.result.Outcomes = append(o.result.Outcomes, outcome)
			return nil
		}
	}

	var backupPath string
	if o.config.Backup {
		res, err := o.backups.Write(ctx, profile, func(ctx context.Context) ([]byte, error) {
			return o.api.ExportProfile(ctx, profile.UID, scopeUID)
		}, detail.Raw)
		if err != nil {
			slog.Error("backup failed, deleting anyway",
				slog.String("name", profile.Name),
				slog.String("uid", profile.UID),
				slog.String("error", err.Error()),
			)
			o.result.Errors = append(o.result.Errors, fmt.Errorf("backup %s (%s): %w", profile.Name, profile.UID, err))
		} else {
			backupPath = res.Path
		}
	}

	if o.config.DryRun {
		outcome := o.outcome(profile, models.StatusUnused, models.ActionSkipped)
		outcome.BackupPath = backupPath
		o.result.Outcomes = append(o.result.Outcomes, outcome)
		return nil
	}

	if err := o.api.DeleteProfile(ctx, profile.UID, scopeUID); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.fail(profile, models.ActionDeleteFailed, fmt.Errorf("failed to delete %s (%s): %w", profile.Name, profile.UID, err))
		return nil
	}

	o.deleted.Insert(profile.UID)
	outcome := o.outcome(profile, models.StatusDeleted, models.ActionDeleted)
	outcome.BackupPath = backupPath
	o.result.Outcomes = append(o.result.Outcomes, outcome)
	o.result.Deleted = append(o.result.Deleted, models.DeletedItem{
		ProfileUID:  profile.UID,
		ProfileName: profile.Name,
		Version:     profile.Version,
		Detail:      detail.Raw,
	})
	slog.Info("profile deleted",
		slog.String("name", profile.Name),
		slog.String("version", profile.Version),
		slog.String("uid", profile.UID),
		slog.String("backup", backupPath),
	)
	return nil
}

// scopingUID picks the project context for detail and delete calls.
func (o *Orchestrator) scopingUID(profile *models.Profile) string {
	if profile.Scope != models.ScopeProject {
		return ""
	}
	if o.opts.ProjectUID != "" {
		return o.opts.ProjectUID
	}
	for _, candidate := range profile.ProjectCandidates() {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func (o *Orchestrator) fail(profile *models.Profile, action models.Action, err error) {
	slog.Error("profile processing failed",
		slog.String("name", profile.Name),
		slog.String("uid", profile.UID),
		slog.String("error", err.Error()),
	)
	o.result.Errors = append(o.result.Errors, err)
	outcome := o.outcome(profile, models.StatusFailed, action)
	outcome.Error = err.Error()
	o.result.Outcomes = append(o.result.Outcomes, outcome)
}

func (o *Orchestrator) record(profile *models.Profile, status models.Status, action models.Action) {
	o.result.Outcomes = append(o.result.Outcomes, o.outcome(profile, status, action))
}

func (o *Orchestrator) outcome(profile *models.Profile, status models.Status, action models.Action) models.OutcomeRecord {
	return models.OutcomeRecord{
		UID:     profile.UID,
		Name:    profile.Name,
		Version: profile.Version,
		Scope:   profile.Scope,
		Project: profile.ProjectDisplay(),
		Status:  status,
		Action:  action,
	}
}
