//go:build !windows

package process

import "os/exec"

// configureCmdLine is a no-op: arguments are passed to exec unmodified.
func configureCmdLine(*exec.Cmd, Command) {}
