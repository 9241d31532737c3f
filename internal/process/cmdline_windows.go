//go:build windows

package process

import (
	"os/exec"
	"syscall"

	"github.com/gpm-labs/gpm/internal/platform"
)

// configureCmdLine replaces the CRT-style command line Go would build with
// one PowerShell parses correctly.
func configureCmdLine(cmd *exec.Cmd, c Command) {
	if !platform.IsPowerShell(c.Shell) {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: PowerShellCommandLine(cmd.Path, c)}
}
