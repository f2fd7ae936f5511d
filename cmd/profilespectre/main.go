package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/profilespectre/internal/api"
	"github.com/ppiankov/profilespectre/internal/app"
	"github.com/ppiankov/profilespectre/internal/cleanup"
	"github.com/ppiankov/profilespectre/internal/logging"
	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/internal/prompt"
	"github.com/ppiankov/profilespectre/pkg/config"
)

var (
	version    = "0.1.0"
	verbose    bool
	isFirstRun bool

	// auditLog is the open --audit-log trail, if any.
	auditLog io.Closer
)

// Exit codes for structured error reporting.
const (
	ExitSuccess    = 0
	ExitInternal   = 1
	ExitInvalidArg = 2
	ExitNotFound   = 3
	ExitAborted    = 4
	ExitNetwork    = 5
)

func main() {
	logging.Init(false)
	isFirstRun = app.IsFirstRun()

	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
	}
	if closeErr := closeAuditLog(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "failed to close audit log: %v\n", closeErr)
	}
	if err != nil {
		os.Exit(classifyError(err))
	}
}

// closeAuditLog restores the console logger and closes the audit trail.
func closeAuditLog() error {
	if auditLog == nil {
		return nil
	}
	err := auditLog.Close()
	auditLog = nil
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "profilespectre",
		Short: "Unused cluster profile finder",
		Long: `ProfileSpectre finds cluster profiles that no cluster, cluster uid or
cluster template references, across the tenant and every project.

analyze reports them; cleanup deletes them after confirmation, optionally
writing a backup of each profile first.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
			if isFirstRun {
				cmd.PrintErrf("Tip: put defaults such as api_endpoint and project in %s\n", config.DefaultConfigFileYAML)
			}
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(NewAnalyzeCmd())
	root.AddCommand(NewCleanupCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, cleanup.ErrAborted):
		return ExitAborted
	case errors.Is(err, models.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, config.ErrMissingAPIKey),
		errors.Is(err, prompt.ErrNonInteractive),
		api.IsAuthError(err):
		return ExitInvalidArg
	case api.IsNetworkError(err):
		return ExitNetwork
	}

	if os.IsNotExist(err) {
		return ExitNotFound
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "no such file") ||
		strings.Contains(msg, "does not exist") {
		return ExitNotFound
	}

	if strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "expected") {
		return ExitInvalidArg
	}

	return ExitInternal
}
