package process

import (
	"strings"

	"github.com/gpm-labs/gpm/internal/platform"
)

// PowerShellCommandLine renders c as a raw Windows command line for a
// PowerShell-family shell at bin.
//
// The interpreter path and the shell arguments follow the usual MSVC quoting
// rules. Everything after them is parsed by PowerShell itself: the script is
// run through the & call operator, and the script path, flag values and
// arguments are escaped with platform.EscapePowerShell. Flag names are
// passed as-is.
func PowerShellCommandLine(bin string, c Command) string {
	parts := []string{platform.QuoteWindowsArg(bin)}
	for _, a := range c.ShellArgs {
		parts = append(parts, platform.QuoteWindowsArg(a))
	}
	parts = append(parts, "&", platform.EscapePowerShell(c.Script))
	for _, f := range c.Flags {
		parts = append(parts, f.Name, platform.EscapePowerShell(f.Value))
	}
	for _, a := range c.Args {
		parts = append(parts, platform.EscapePowerShell(a))
	}
	return strings.Join(parts, " ")
}
