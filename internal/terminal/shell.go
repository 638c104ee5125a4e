// shell.go - Shell resolution

package terminal

import "runtime"

// DefaultShell returns the platform's shell
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "powershell.exe"
	}
	return "/bin/bash"
}

// ResolveShell picks the first non-empty of the per-call shell, the configured shell,
// and the platform default.
func ResolveShell(requested, configured string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return DefaultShell()
}
