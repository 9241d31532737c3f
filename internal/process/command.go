package process

import (
	"strings"
)

// Flag is a named option passed to a script ahead of its positional
// arguments, e.g. -name rg.
type Flag struct {
	Name  string // including the leading dash
	Value string
}

// Command describes one script invocation:
//
//	Shell ShellArgs... Script Flags... Args...
//
// run with Dir as the working directory.
type Command struct {
	Shell     string
	ShellArgs []string
	Script    string
	Flags     []Flag
	Args      []string
	Dir       string
}

// Argv returns the arguments handed to Shell, in order.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.ShellArgs)+1+2*len(c.Flags)+len(c.Args))
	argv = append(argv, c.ShellArgs...)
	argv = append(argv, c.Script)
	for _, f := range c.Flags {
		argv = append(argv, f.Name, f.Value)
	}
	return append(argv, c.Args...)
}

// String renders the command for logs. Arguments containing whitespace or
// quotes are shown quoted.
func (c Command) String() string {
	parts := append([]string{c.Shell}, c.Argv()...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\n\"'") {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
	}
	return strings.Join(parts, " ")
}
