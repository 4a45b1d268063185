// Package controller provides the output adapters that display impall runs.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "impall.dev/pkg/impall/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeList
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRunMode sets the UI to show load progress.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithListMode sets the UI to show discovered units.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithViewMode sets the UI to show a saved report.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// UI defines how runs, unit listings and reports are displayed.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)

	// UnitStarted and UnitFinished report load progress.
	UnitStarted(unit m.Unit)
	UnitFinished(result m.Result)

	DisplayRunInfo(ctx context.Context, runID string, cfg m.Config)
	// DisplayReport shows successes then failures, the reconciliation with
	// the expected failures and, when they disagree, their diff.
	DisplayReport(ctx context.Context, report m.Report, rec m.Reconciliation, diff string) error
	DisplaySavedReport(ctx context.Context, saved m.SavedReport) error
	DisplayUnits(ctx context.Context, units []m.Unit) error
	DisplayResolution(ctx context.Context, path m.Path, root m.Path, name string) error
	DisplayChanges(ctx context.Context, changed []m.Path)
}

// NewUI returns the interactive TUI when tty is true, else the plain SimpleUI.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
