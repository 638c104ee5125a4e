// shell_validator.go - Shell path validation before spawn
//
// ## Metadata
//
// Shell validation for pseudo-terminal sessions.
//
// ### Purpose
//
// A session's shell is executed directly, never through another shell, so the value
// must name exactly one executable. Reject values carrying shell syntax and resolve
// the rest to an executable path before the pty is allocated.

package security

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEmptyShell is returned for an empty shell value
var ErrEmptyShell = errors.New("shell path is empty")

// dangerousChars are shell metacharacters that have no place in an executable path.
// Parentheses are allowed: they appear in Windows paths such as "Program Files (x86)".
var dangerousChars = []string{";", "&", "|", "`", "$", "<", ">", "\n", "\r"}

// ValidateShell checks the shell value and returns the resolved executable path.
// Bare names are looked up in PATH; paths must point at an executable file.
func ValidateShell(shell string) (string, error) {
	if shell == "" {
		return "", ErrEmptyShell
	}

	for _, dangerous := range dangerousChars {
		if strings.Contains(shell, dangerous) {
			return "", fmt.Errorf("shell contains dangerous character %q", dangerous)
		}
	}

	path, err := exec.LookPath(shell)
	if err != nil {
		return "", fmt.Errorf("shell not executable: %w", err)
	}
	return path, nil
}
