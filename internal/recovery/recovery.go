// Package recovery decides what happens to a registry entry when removing its
// file or directory fails. The registry and the filesystem are only allowed
// to disagree after an explicit answer from a Decider.
package recovery

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Prompt is the question asked before a registry entry is dropped despite a
// failed filesystem operation.
const Prompt = "Remove from registry?"

// Decider answers whether a registry entry should be dropped even though
// removing its backing file or directory failed.
type Decider interface {
	ReconcileOnFailure(err error) bool
}

// Func adapts a plain function to a Decider.
type Func func(err error) bool

func (f Func) ReconcileOnFailure(err error) bool { return f(err) }

// Fixed always gives the same answer. It backs the `assume` setting and
// non-interactive tests.
type Fixed bool

func (f Fixed) ReconcileOnFailure(error) bool { return bool(f) }

// Terminal asks on an interactive terminal. Only "y" (any case) is a yes; an
// empty line, any other answer, or a read error is a no.
type Terminal struct {
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminal returns a Terminal that prompts on out and reads answers from
// in. A single reader is kept so answers to consecutive prompts are not lost
// to buffering.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{out: out, reader: bufio.NewReader(in)}
}

func (t *Terminal) ReconcileOnFailure(err error) bool {
	fmt.Fprintf(t.out, "error: %v\n", err)
	fmt.Fprintf(t.out, "%s [y/N]: ", Prompt)

	line, readErr := t.reader.ReadString('\n')
	if readErr != nil && line == "" {
		log.Debug().Err(readErr).Msg("no answer to recovery prompt")
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// Outcome is the result of removing one named entry.
type Outcome struct {
	Name    string
	Removed bool  // the entry was dropped from the registry
	Forced  bool  // dropped although the filesystem removal failed
	Err     error // the filesystem error, if any
}

// Attempt runs remove for the entry called name. When remove fails, d
// decides whether the entry is dropped anyway.
func Attempt(d Decider, name string, remove func() error) Outcome {
	err := remove()
	if err == nil {
		return Outcome{Name: name, Removed: true}
	}
	if d != nil && d.ReconcileOnFailure(err) {
		log.Debug().Str("name", name).Err(err).Msg("dropping registry entry after failed removal")
		return Outcome{Name: name, Removed: true, Forced: true, Err: err}
	}
	return Outcome{Name: name, Err: err}
}
