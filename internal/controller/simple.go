package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "impall.dev/pkg/impall/internal/model"
)

// SimpleUI implements UI using cobra Command's output streams. Failures go
// to the error stream, everything else to the output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// UnitStarted is a no-op; SimpleUI only reports finished units.
func (s *SimpleUI) UnitStarted(_ m.Unit) {}

// UnitFinished prints a one-line outcome for failed units as they happen.
func (s *SimpleUI) UnitFinished(result m.Result) {
	if result.Status == m.Failure {
		s.errorf("FAIL %s\n", result.Unit.Name)
	}
}

// DisplayRunInfo prints the run header.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, runID string, cfg m.Config) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Run %s (warnings: %s, clear state: %t)\n", shortID(runID), cfg.Warnings, cfg.ClearState)
}

// DisplayReport prints successes, failures, the reconciliation and a summary table.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report, rec m.Reconciliation, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	writeReport(s.cmd.OutOrStdout(), s.cmd.ErrOrStderr(), report, rec, diff)

	return nil
}

// DisplaySavedReport prints a report loaded from disk.
func (s *SimpleUI) DisplaySavedReport(ctx context.Context, saved m.SavedReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Run %s started %s\n", saved.RunID, saved.StartedAt.Format("2006-01-02 15:04:05"))
	writeReport(s.cmd.OutOrStdout(), s.cmd.ErrOrStderr(), saved.Report, saved.Reconciliation, "")

	return nil
}

// DisplayUnits prints the discovered units as a table.
func (s *SimpleUI) DisplayUnits(ctx context.Context, units []m.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderUnitsTable(units))

	return nil
}

// DisplayResolution prints the search root and dotted name of a path.
func (s *SimpleUI) DisplayResolution(ctx context.Context, path m.Path, root m.Path, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("path: %s\nroot: %s\nname: %s\n", path, root, name)

	return nil
}

// DisplayChanges announces a watch-triggered rerun.
func (s *SimpleUI) DisplayChanges(ctx context.Context, changed []m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\nDetected %d change(s), running again\n", len(changed))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func (s *SimpleUI) errorf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}

// writeReport renders a run the way both UIs print it once it is over.
func writeReport(out, errOut io.Writer, report m.Report, rec m.Reconciliation, diff string) {
	if successes := report.Successes(); len(successes) > 0 {
		_, _ = fmt.Fprintln(out, "Successes")
		for _, name := range successes {
			_, _ = fmt.Fprintf(out, "  %s\n", name)
		}

		_, _ = fmt.Fprintln(out)
	}

	if len(rec.Unexpected) > 0 {
		_, _ = fmt.Fprintln(errOut, "Failures")
		for _, failure := range rec.Unexpected {
			_, _ = fmt.Fprintf(errOut, "  %s (%s)\n", failure.Name, indentDetail(failure.Detail))
		}

		_, _ = fmt.Fprintln(errOut)
	}

	if len(rec.FailedToFail) > 0 {
		_, _ = fmt.Fprintf(errOut, "Didn't fail when expected: %s\n\n", strings.Join(rec.FailedToFail, " "))
	}

	if len(rec.Missing) > 0 {
		_, _ = fmt.Fprintf(out, "Expected failures not attempted: %s\n\n", strings.Join(rec.Missing, " "))
	}

	_, _ = fmt.Fprint(out, renderSummaryTable(report, rec))

	if diff != "" {
		_, _ = fmt.Fprintf(errOut, "\n%s", diff)
	}
}

// indentDetail keeps multi-line failure details aligned under their unit.
func indentDetail(detail string) string {
	return strings.ReplaceAll(strings.TrimSpace(detail), "\n", "\n    ")
}

func renderSummaryTable(report m.Report, rec m.Reconciliation) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Outcome", "Units"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	table.Append([]string{"Loaded", fmt.Sprintf("%d", len(report.Successes()))})
	table.Append([]string{"Failed", fmt.Sprintf("%d", len(rec.Unexpected))})
	table.Append([]string{"Failed as expected", fmt.Sprintf("%d", len(rec.Expected))})
	table.Append([]string{"Did not fail", fmt.Sprintf("%d", len(rec.FailedToFail))})

	status := "OK"
	if !rec.OK() {
		status = "FAILED"
	}

	table.SetFooter([]string{fmt.Sprintf("Total %d", report.Len()), status})
	table.Render()

	return tableBuffer.String()
}

func renderUnitsTable(units []m.Unit) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "Kind", "Search Root"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, unit := range units {
		table.Append([]string{unit.Name, string(unit.Kind), string(unit.SearchRoot)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Units %d", len(units)), "", ""})
	table.Render()

	return tableBuffer.String()
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}

	return runID
}
