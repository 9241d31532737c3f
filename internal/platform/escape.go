package platform

import "strings"

var powerShellBinaries = map[string]bool{
	"powershell":     true,
	"powershell.exe": true,
	"pwsh":           true,
	"pwsh.exe":       true,
}

// IsPowerShell reports whether shell names a PowerShell-family binary. The
// comparison uses the last path element and ignores case, as Windows does.
func IsPowerShell(shell string) bool {
	if i := strings.LastIndexAny(shell, `/\`); i >= 0 {
		shell = shell[i+1:]
	}
	return powerShellBinaries[strings.ToLower(shell)]
}

// EscapePowerShell wraps s in single quotes and backslash-escapes every
// double quote, so PowerShell's argument parser receives s as one literal
// token. Single quotes inside s are not escaped and will end the quoting
// early.
func EscapePowerShell(s string) string {
	return "'" + strings.ReplaceAll(s, `"`, `\"`) + "'"
}

// QuoteWindowsArg quotes s following the MSVC runtime command-line rules, for
// the parts of a raw command line that are not handed to PowerShell's parser
// (the interpreter path and its own flags).
func QuoteWindowsArg(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			slashes++
		case '"':
			// Backslashes before a quote are doubled, then the quote is escaped.
			for ; slashes > 0; slashes-- {
				b.WriteByte('\\')
			}
			b.WriteByte('\\')
		default:
			slashes = 0
		}
		b.WriteByte(c)
	}
	for ; slashes > 0; slashes-- {
		b.WriteByte('\\')
	}
	b.WriteByte('"')
	return b.String()
}
