// Package prompt asks the operator for confirmation before destructive steps.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNonInteractive is returned when a confirmation is needed but stdin is
// not a terminal.
var ErrNonInteractive = errors.New("confirmation required but stdin is not interactive (use --yes)")

// Prompter asks yes/no questions.
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Interactive reads answers line by line from an input stream.
type Interactive struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractive prompts on stdout and reads from stdin.
func NewInteractive() *Interactive {
	return NewInteractiveWithIO(os.Stdin, os.Stdout)
}

// NewInteractiveWithIO prompts on w and reads from r.
func NewInteractiveWithIO(r io.Reader, w io.Writer) *Interactive {
	return &Interactive{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Confirm returns true only for "y" or "yes", ignoring case and surrounding
// whitespace. EOF is a no.
func (p *Interactive) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := fmt.Fprintf(p.writer, "%s [y/N]: ", message); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		_, _ = fmt.Fprintln(p.writer)
	}

	return IsAffirmative(line), nil
}

// IsAffirmative reports whether answer is an explicit yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// AutoApprove answers yes to everything. Used with --yes.
type AutoApprove struct{}

// Confirm always approves unless ctx is done.
func (AutoApprove) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}
