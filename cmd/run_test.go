package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"impall.dev/pkg/impall/internal/adapter"
	"impall.dev/pkg/impall/internal/domain"
	domainmocks "impall.dev/pkg/impall/internal/domain/mocks"
	m "impall.dev/pkg/impall/internal/model"
)

func TestRunCmd_Defaults(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return assert.ObjectsAreEqual([]m.Path{"./src"}, args.Config.Roots) &&
			args.Config.Warnings == m.WarningsDefault &&
			args.Config.ClearState &&
			!args.Config.FailFast &&
			!args.Config.RecurseAll &&
			len(args.Config.Include) == 0 &&
			len(args.Config.Exclude) == 0 &&
			args.ReportPath == m.Path(defaultReportPath) &&
			!args.Watch
	})).Return(nil).Once()

	cmd.SetArgs([]string{"run", "./src"})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.IsType(t, &adapter.ExecLoader{}, loader.get())
}

func TestRunCmd_AllFlags(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		cfg := args.Config

		return assert.ObjectsAreEqual([]m.Path{"a", "b"}, cfg.Roots) &&
			assert.ObjectsAreEqual([]string{"pkg.**"}, cfg.Include) &&
			assert.ObjectsAreEqual([]string{"pkg.slow", "pkg.gen.*"}, cfg.Exclude) &&
			assert.ObjectsAreEqual([]string{"pkg.broken"}, cfg.ExpectedFailures) &&
			cfg.RecurseAll &&
			!cfg.ClearState &&
			cfg.FailFast &&
			cfg.Warnings == m.WarningsError &&
			cfg.Layout == m.Layout{Marker: "init.rb", Suffix: ".rb"} &&
			args.ReportPath == "out.yaml" &&
			args.Watch
	})).Return(nil).Once()

	cmd.SetArgs([]string{
		"run", "a", "b",
		"-i", "pkg.**",
		"-e", "pkg.slow",
		"--exclude", "pkg.gen.*",
		"-f", "pkg.broken",
		"-a",
		"--clear-state=false",
		"-r",
		"-w", "error",
		"-o", "out.yaml",
		"--marker", "init.rb",
		"--suffix", ".rb",
		"--watch",
	})
	err := cmd.Execute()

	require.NoError(t, err)
}

func TestRunCmd_ColonSeparatedLists(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return assert.ObjectsAreEqual([]string{"a.b", "c.**", "d"}, args.Config.Exclude) &&
			assert.ObjectsAreEqual([]string{"x", "y"}, args.Config.ExpectedFailures)
	})).Return(nil).Once()

	cmd.SetArgs([]string{"run", "-e", "a.b:c.**", "-e", "d", "-f", "x:y"})

	require.NoError(t, cmd.Execute())
}

func TestRunCmd_ExcludeFromEnvironment(t *testing.T) {
	t.Setenv("IMPALL_PATHS_EXCLUDE", "x.y:z.**")

	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return assert.ObjectsAreEqual([]string{"x.y", "z.**"}, args.Config.Exclude)
	})).Return(nil).Once()

	cmd.SetArgs([]string{"run"})

	require.NoError(t, cmd.Execute())
}

func TestRunCmd_InvalidWarnings(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	cmd.SetArgs([]string{"run", "-w", "loud"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown warning policy")
	mockWorkflow.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRunCmd_UnknownLoader(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	cmd.SetArgs([]string{"run", "--loader", "magic"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown loader "magic"`)
	mockWorkflow.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRunCmd_MissingScript(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	missing := filepath.Join(t.TempDir(), "missing.sh")

	cmd.SetArgs([]string{"run", "--loader", "script", "--script", missing})
	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCmd_ScriptLoader(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	script := filepath.Join(t.TempDir(), "load.sh")
	require.NoError(t, os.WriteFile(script, []byte("test -n \"$IMPALL_UNIT\"\n"), 0o644))

	mockWorkflow.On("Run", mock.Anything, mock.Anything).Return(nil).Once()

	cmd.SetArgs([]string{"run", "--loader", "script", "--script", script, "--timeout", "5"})
	require.NoError(t, cmd.Execute())

	scriptLoader, ok := loader.get().(*adapter.ScriptLoader)
	require.True(t, ok, "got %T", loader.get())
	assert.Equal(t, "test -n \"$IMPALL_UNIT\"\n", scriptLoader.Source())
}

func TestRunCmd_RunFailed(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newRunCmd(), mockWorkflow)

	mockWorkflow.On("Run", mock.Anything, mock.Anything).Return(domain.ErrRunFailed).Once()

	cmd.SetArgs([]string{"run", "."})
	err := cmd.Execute()

	assert.True(t, errors.Is(err, domain.ErrRunFailed))
}
