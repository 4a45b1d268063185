package domain

import (
	"errors"
	"fmt"
	"strings"

	m "impall.dev/pkg/impall/internal/model"
)

// syntheticFrame marks interpreter frames for code that has no source file,
// such as the probe passed with -c.
const syntheticFrame = `File "<`

// runtimeFramePrefixes identify Go stack frames belonging to the runtime
// rather than to the code being loaded.
var runtimeFramePrefixes = []string{"runtime.", "runtime/", "panic(", "goroutine "}

// failureDetail renders err as the text stored on a failed Result.
func failureDetail(err error) string {
	var loadErr *m.LoadError
	if errors.As(err, &loadErr) {
		detail := strings.TrimPrefix(loadErr.Error(), loadErr.Unit+": ")
		if trace := filterTrace(loadErr.Trace); trace != "" {
			detail += "\n" + trace
		}

		return detail
	}

	return err.Error()
}

// panicError captures a recovered panic with its filtered stack.
func panicError(unit string, recovered any, stack []byte) *m.LoadError {
	return &m.LoadError{
		Unit:    unit,
		Kind:    "panic",
		Message: fmt.Sprint(recovered),
		Trace:   filterGoStack(string(stack)),
	}
}

// filterTrace drops synthetic interpreter frames from a captured traceback.
func filterTrace(trace string) string {
	lines := strings.Split(strings.TrimRight(trace, "\n"), "\n")
	kept := lines[:0]

	for _, line := range lines {
		if strings.Contains(line, syntheticFrame) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// filterGoStack drops runtime frames from a debug.Stack dump. Each frame is a
// function line followed by an indented file:line.
func filterGoStack(stack string) string {
	lines := strings.Split(strings.TrimRight(stack, "\n"), "\n")
	kept := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "\t") {
			kept = append(kept, line)
			continue
		}

		if hasAnyPrefix(line, runtimeFramePrefixes) {
			if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
				i++
			}

			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}
