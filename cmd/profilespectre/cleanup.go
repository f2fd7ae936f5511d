package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/internal/prompt"
)

// NewCleanupCmd creates the cleanup command
func NewCleanupCmd() *cobra.Command {
	return newCleanupCmd(newRunOptions())
}

func newCleanupCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete unused cluster profiles",
		Long: `Run the same checks as analyze, then delete every unused profile.
Each deletion is confirmed interactively unless --yes is given. With
--backup, each profile is exported to <output>/backups before it is deleted.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter, err := selectPrompter(opts.cfg.AssumeYes, prompt.IsInteractive())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runWorkflow(ctx, opts.cfg, models.ModeCleanup, prompter, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), report)
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.cfg.Backup, "backup", false, "Export each profile to <output>/backups before deleting it")
	cmd.Flags().BoolVarP(&opts.cfg.AssumeYes, "yes", "y", false, "Delete without asking for confirmation")
	cmd.Flags().BoolVar(&opts.cfg.DryRun, "dry-run", false, "Do everything except the delete call")
	return cmd
}

// selectPrompter returns the confirmation source for a cleanup run.
func selectPrompter(assumeYes, interactive bool) (prompt.Prompter, error) {
	if assumeYes {
		return prompt.AutoApprove{}, nil
	}
	if !interactive {
		return nil, prompt.ErrNonInteractive
	}
	return prompt.NewInteractive(), nil
}
