package security

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShellRejects(t *testing.T) {
	tests := []struct {
		name  string
		shell string
	}{
		{name: "empty", shell: ""},
		{name: "command chaining", shell: "/bin/sh; rm -rf /"},
		{name: "pipe", shell: "/bin/sh | tee"},
		{name: "substitution", shell: "$(which sh)"},
		{name: "backticks", shell: "`which sh`"},
		{name: "redirect", shell: "/bin/sh > /tmp/x"},
		{name: "newline", shell: "/bin/sh\nid"},
		{name: "missing binary", shell: "/nonexistent/shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateShell(tt.shell)
			assert.Error(t, err)
		})
	}
}

func TestValidateShellEmpty(t *testing.T) {
	_, err := ValidateShell("")
	assert.ErrorIs(t, err, ErrEmptyShell)
}

func TestValidateShellResolvesPath(t *testing.T) {
	want, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	got, err := ValidateShell("sh")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ValidateShell(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidateShellAllowsParenthesesInPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit check is POSIX only")
	}

	dir := filepath.Join(t.TempDir(), "Program Files (x86)")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	shell := filepath.Join(dir, "pwsh")
	require.NoError(t, os.WriteFile(shell, []byte("#!/bin/sh\n"), 0o755))

	got, err := ValidateShell(shell)
	require.NoError(t, err)
	assert.Equal(t, shell, got)
}
