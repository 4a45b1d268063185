package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Output(t *testing.T) {
	cmd := newVersionCmd()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Regexp(t, `^impall \S+ \(\S+\)\n`, output)
	assert.Contains(t, output, "layout: marker __init__.py, suffix .py\n")
	assert.Contains(t, output, "loader: exec python3 (built-in probe)\n")
}

func TestVersionCmd_ConfiguredLoader(t *testing.T) {
	t.Setenv("IMPALL_LAYOUT_SUFFIX", ".rb")
	t.Setenv("IMPALL_LOADER_KIND", "script")
	t.Setenv("IMPALL_LOADER_SCRIPT", "load.sh")

	cmd := newVersionCmd()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "layout: marker __init__.py, suffix .rb\n")
	assert.Contains(t, out.String(), "loader: script load.sh\n")
}

func TestLoaderSummary(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"default exec", nil, "exec python3 (built-in probe)"},
		{"exec command", map[string]string{"IMPALL_LOADER_COMMAND": "ruby -e load"}, "exec ruby -e load"},
		{"built-in script", map[string]string{"IMPALL_LOADER_KIND": "script"}, "script (built-in)"},
		{"unknown", map[string]string{"IMPALL_LOADER_KIND": "magic"}, "magic (unknown)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			assert.Equal(t, tt.want, loaderSummary())
		})
	}
}
