package pkgtype

import (
	"runtime"
)

// Shell is an interpreter binary plus the fixed arguments placed before the
// script path.
type Shell struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// DefaultShell returns the shell a type falls back to when it names none:
// powershell on Windows, bash elsewhere.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "bash"
}

// DefaultShells returns the shell registry of a fresh types.toml.
func DefaultShells() map[string][]string {
	return map[string][]string{DefaultShell(): {"-c"}}
}
