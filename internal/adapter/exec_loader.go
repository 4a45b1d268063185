package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	m "impall.dev/pkg/impall/internal/model"
)

// DefaultCommand loads a unit with the Python interpreter found on PATH.
var DefaultCommand = []string{"python3", "-W", "{warnings}", "-c", PythonProbe, "{unit}"}

// ExecLoader loads each unit in a fresh interpreter process.
//
// Command arguments may contain the placeholders {unit}, {root}, {path} and
// {warnings}; they are replaced with the dotted name, search root, unit path
// and active warning policy.
type ExecLoader struct {
	command       []string
	searchPathEnv string
	timeout       time.Duration

	mu       sync.Mutex
	resolved map[string]string
}

// ExecOption configures an ExecLoader.
type ExecOption func(*ExecLoader)

// WithCommand replaces the command template.
func WithCommand(command ...string) ExecOption {
	return func(l *ExecLoader) {
		if len(command) > 0 {
			l.command = command
		}
	}
}

// WithSearchPathEnv sets the variable used to pass the search path.
func WithSearchPathEnv(name string) ExecOption {
	return func(l *ExecLoader) {
		if name != "" {
			l.searchPathEnv = name
		}
	}
}

// WithTimeout bounds each load attempt.
func WithTimeout(timeout time.Duration) ExecOption {
	return func(l *ExecLoader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// NewExecLoader constructs an ExecLoader with the default Python command.
func NewExecLoader(opts ...ExecOption) *ExecLoader {
	l := &ExecLoader{
		command:       DefaultCommand,
		searchPathEnv: DefaultSearchPathEnv,
		timeout:       DefaultLoadTimeout,
		resolved:      map[string]string{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// InvalidateCaches forgets resolved executable paths.
func (l *ExecLoader) InvalidateCaches() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.resolved)
}

// Load runs the command for unit and classifies its outcome.
func (l *ExecLoader) Load(ctx context.Context, env *m.Environment, unit m.Unit) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	args := l.expand(env, unit)

	program, err := l.lookPath(args[0])
	if err != nil {
		slog.Error("Failed to find loader executable", "program", args[0], "error", err)
		return &m.LoadError{Unit: unit.Name, Kind: "LoaderNotFound", Message: err.Error(), Err: err}
	}

	// #nosec G204 - the command template comes from the user's own configuration
	cmd := exec.CommandContext(ctx, program, args[1:]...)
	cmd.Dir = string(unit.SearchRoot)
	cmd.Env = loaderEnv(env, unit, l.searchPathEnv)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	slog.Debug("Loader process finished", "unit", unit.Name, "program", program, "error", runErr, "stdout", stdout.Len(), "stderr", stderr.Len())

	return classifyOutput(ctx, unit, stderr.String(), runErr)
}

func (l *ExecLoader) expand(env *m.Environment, unit m.Unit) []string {
	replacer := strings.NewReplacer(
		"{unit}", unit.Name,
		"{root}", string(unit.SearchRoot),
		"{path}", string(unit.Path),
		"{warnings}", string(env.Warnings()),
	)

	args := make([]string, 0, len(l.command))
	for _, arg := range l.command {
		args = append(args, replacer.Replace(arg))
	}

	return args
}

func (l *ExecLoader) lookPath(program string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if resolved, ok := l.resolved[program]; ok {
		return resolved, nil
	}

	resolved, err := exec.LookPath(program)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", program, err)
	}

	l.resolved[program] = resolved

	return resolved, nil
}
