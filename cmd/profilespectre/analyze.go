package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/internal/prompt"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	return newAnalyzeCmd(newRunOptions())
}

func newAnalyzeCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report unused cluster profiles",
		Long: `Collect cluster profiles from the tenant and every project (or only the
given project), check each one for referencing clusters and cluster
templates, and report which are unused. Nothing is modified.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runWorkflow(ctx, opts.cfg, models.ModeAnalyze, prompt.AutoApprove{}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), report)
			return nil
		},
	}

	opts.addFlags(cmd)
	return cmd
}
