package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/gpm-labs/gpm/internal/errdefs"
)

// Invoker runs a Command and returns its trimmed standard output.
type Invoker interface {
	Run(ctx context.Context, c Command) (string, error)
}

// Runner is the Invoker backed by os/exec.
type Runner struct {
	// Stdin and Stderr can be set for testing; default to os.Stdin/os.Stderr.
	Stdin  io.Reader
	Stderr io.Writer
}

// Run executes c and returns its standard output with surrounding whitespace
// removed. An empty result is not an error.
//
// A non-zero exit status is logged and otherwise ignored: whatever the script
// printed is still returned, and the caller decides what the output means.
// Run fails with errdefs.ErrProcessSpawn when the shell cannot be found or
// started, and with errdefs.ErrOutputDecode when the output is not UTF-8.
func (r *Runner) Run(ctx context.Context, c Command) (string, error) {
	bin, err := exec.LookPath(c.Shell)
	if err != nil {
		return "", fmt.Errorf("looking up shell %s: %w: %w", c.Shell, errdefs.ErrProcessSpawn, err)
	}

	cmd := exec.CommandContext(ctx, bin, c.Argv()...)
	cmd.Dir = c.Dir
	configureCmdLine(cmd, c)

	stdin := r.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdout bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	log.Info().Str("dir", c.Dir).Msgf("executing: %s", c)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("running %s: %w: %w", c.Script, errdefs.ErrProcessSpawn, err)
		}
		log.Warn().Str("script", c.Script).Int("exit_code", exitErr.ExitCode()).Msg("script exited with non-zero status")
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", fmt.Errorf("reading output of %s: %w", c.Script, errdefs.ErrOutputDecode)
	}
	return strings.TrimSpace(string(out)), nil
}
