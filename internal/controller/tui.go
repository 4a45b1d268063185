package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "impall.dev/pkg/impall/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// TUI implements UI with a Bubble Tea progress spinner and styled reports.
type TUI struct {
	output    io.Writer
	errOutput io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output, errOutput io.Writer) *TUI {
	return &TUI{output: output, errOutput: errOutput}
}

// Start launches the progress display in run mode. Other modes print only.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if newStartConfig(options).mode != ModeRun {
		return nil
	}

	t.startProgress(ctx)

	return nil
}

// Close stops the progress display.
func (t *TUI) Close(_ context.Context) {
	t.stopProgress()
}

// UnitStarted updates the spinner with the unit being loaded.
func (t *TUI) UnitStarted(unit m.Unit) {
	t.send(unitStartedMsg{name: unit.Name})
}

// UnitFinished updates the counters.
func (t *TUI) UnitFinished(result m.Result) {
	t.send(unitFinishedMsg{result: result})
}

// DisplayRunInfo prints the run header.
func (t *TUI) DisplayRunInfo(ctx context.Context, runID string, cfg m.Config) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.println(titleStyle.Render("impall") + mutedStyle.Render(fmt.Sprintf(" run %s · warnings %s", shortID(runID), cfg.Warnings)))
}

// DisplayReport stops the progress display and prints the styled report.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report, rec m.Reconciliation, diff string) error {
	t.stopProgress()

	if err := ctx.Err(); err != nil {
		return err
	}

	t.writeStyledReport(report, rec, diff)

	return nil
}

// DisplaySavedReport prints a report loaded from disk.
func (t *TUI) DisplaySavedReport(ctx context.Context, saved m.SavedReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.println(titleStyle.Render("Run "+saved.RunID) + mutedStyle.Render(" started "+saved.StartedAt.Format("2006-01-02 15:04:05")))
	t.writeStyledReport(saved.Report, saved.Reconciliation, "")

	return nil
}

// DisplayUnits prints the discovered units.
func (t *TUI) DisplayUnits(ctx context.Context, units []m.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(units) == 0 {
		t.println(warningStyle.Render("No loadable units found"))
		return nil
	}

	t.println(titleStyle.Render(fmt.Sprintf("%d unit(s) would be loaded", len(units))))
	_, _ = fmt.Fprint(t.output, renderUnitsTable(units))

	return nil
}

// DisplayResolution prints the search root and dotted name of a path.
func (t *TUI) DisplayResolution(ctx context.Context, path m.Path, root m.Path, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.println(titleStyle.Render(name))
	t.println(mutedStyle.Render("path: ") + string(path))
	t.println(mutedStyle.Render("root: ") + string(root))

	return nil
}

// DisplayChanges announces a rerun and restarts the progress display.
func (t *TUI) DisplayChanges(ctx context.Context, changed []m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.println("")
	t.println(warningStyle.Render(fmt.Sprintf("%d change(s) detected, running again", len(changed))))
	t.startProgress(ctx)
}

func (t *TUI) writeStyledReport(report m.Report, rec m.Reconciliation, diff string) {
	for _, name := range report.Successes() {
		t.println(successStyle.Render("✓ ") + name)
	}

	for _, failure := range rec.Expected {
		t.println(mutedStyle.Render("✗ " + failure.Name + " (expected)"))
	}

	for _, failure := range rec.Unexpected {
		_, _ = fmt.Fprintln(t.errOutput, errorStyle.Render("✗ "+failure.Name))
		_, _ = fmt.Fprintln(t.errOutput, mutedStyle.Render("    "+indentDetail(failure.Detail)))
	}

	if len(rec.FailedToFail) > 0 {
		_, _ = fmt.Fprintln(t.errOutput, errorStyle.Render("Didn't fail when expected: "+strings.Join(rec.FailedToFail, " ")))
	}

	if len(rec.Missing) > 0 {
		t.println(warningStyle.Render("Expected failures not attempted: " + strings.Join(rec.Missing, " ")))
	}

	t.println("")
	_, _ = fmt.Fprint(t.output, renderSummaryTable(report, rec))

	if diff != "" {
		_, _ = fmt.Fprintln(t.errOutput, warningStyle.Render(diff))
	}
}

func (t *TUI) println(line string) {
	_, _ = fmt.Fprintln(t.output, line)
}

func (t *TUI) startProgress(ctx context.Context) {
	t.stopProgress()

	t.mu.Lock()
	defer t.mu.Unlock()

	program := tea.NewProgram(
		newProgressModel(),
		tea.WithOutput(t.output),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = program.Run()
	}()

	t.program = program
	t.done = done
}

func (t *TUI) stopProgress() {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

type unitStartedMsg struct {
	name string
}

type unitFinishedMsg struct {
	result m.Result
}

// progressModel is the Bubble Tea model shown while units load.
type progressModel struct {
	spinner spinner.Model
	current string
	loaded  int
	failed  int
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return progressModel{spinner: s}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case unitStartedMsg:
		pm.current = msg.name

		return pm, nil

	case unitFinishedMsg:
		if msg.result.Status == m.Success {
			pm.loaded++
		} else {
			pm.failed++
		}

		return pm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	counts := successStyle.Render(fmt.Sprintf("%d loaded", pm.loaded))
	if pm.failed > 0 {
		counts += ", " + errorStyle.Render(fmt.Sprintf("%d failed", pm.failed))
	}

	if pm.current == "" {
		return counts + "\n"
	}

	return fmt.Sprintf("%s loading %s  %s\n", pm.spinner.View(), pm.current, counts)
}
