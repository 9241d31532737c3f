package cli

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/branding"
	"github.com/gpm-labs/gpm/internal/config"
	"github.com/gpm-labs/gpm/internal/errdefs"
	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/logging"
	"github.com/gpm-labs/gpm/internal/pkgtype"
	"github.com/gpm-labs/gpm/internal/process"
	"github.com/gpm-labs/gpm/internal/recovery"
	"github.com/gpm-labs/gpm/internal/registry"
	"github.com/gpm-labs/gpm/internal/ui"
)

// buildInfo is injected via ldflags at build time.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// app is the state shared by every command of one invocation.
type app struct {
	build buildInfo

	homeFlag string
	verbose  bool

	home     home.Context
	settings *config.Settings
	out      *ui.Printer
	errOut   *ui.Printer
	decider  recovery.Decider
	runner   *process.Runner
}

// NewRootCmd returns the gpm command tree.
func NewRootCmd(version, commit, date string) *cobra.Command {
	a := &app{build: buildInfo{version: version, commit: commit, date: date}}

	root := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` tracks packages installed by your own scripts.

Repositories are directories holding packages. Every package has a type, and
every type is a script under the scripts directory run by a registered shell.
The text a script prints becomes the package's cache token and is handed back
to it on the next update.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.homeFlag, "home", "", "gpm home directory (default $"+branding.EnvVar("HOME")+" or ~/"+branding.HomeDir()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log script invocations and registry changes")

	root.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newRepoCmd(a),
		newTypeCmd(a),
		newDoctorCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the root command with build info injected via ldflags. A
// returned error has already been printed.
func Execute(version, commit, date string) error {
	root := NewRootCmd(version, commit, date)
	err := root.ExecuteContext(context.Background())
	if err != nil {
		ui.New(root.ErrOrStderr(), true).Error(err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.DisableFlagParsing {
		// "repo" parses its own flags and runs setup from its inner tree.
		return nil
	}
	c, err := home.Resolve(a.homeFlag)
	if err != nil {
		return err
	}
	a.home = c

	s, err := config.Load(c.Home)
	if err != nil {
		return err
	}
	a.settings = s

	level := s.LogLevel()
	if a.verbose {
		level = "debug"
	}
	if err := logging.Setup(level, cmd.ErrOrStderr()); err != nil {
		return err
	}

	a.out = ui.New(cmd.OutOrStdout(), s.Color())
	a.errOut = ui.New(cmd.ErrOrStderr(), s.Color())
	a.runner = &process.Runner{Stdin: cmd.InOrStdin(), Stderr: cmd.ErrOrStderr()}

	if answer, ok := s.Assume(); ok {
		a.decider = recovery.Func(func(err error) bool {
			a.errOut.Error(err)
			return answer
		})
	} else {
		a.decider = recovery.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	log.Debug().Str("home", c.Home).Str("scripts", c.Scripts).Str("repositories", c.Repositories).Msg("resolved gpm home")
	return nil
}

func (a *app) loadRepos() (*registry.Registry, error) {
	return registry.Load(a.home)
}

func (a *app) loadTypes() (*pkgtype.Registry, error) {
	return pkgtype.Load(a.home, a.runner)
}

// printOutcomes reports removals. Filesystem failures were already shown by
// the decider when it was asked.
func (a *app) printOutcomes(outcomes []recovery.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Forced:
			a.out.Removed(a.out.Name(o.Name), a.out.Detail("(registry only)"))
		case o.Removed:
			a.out.Removed(a.out.Name(o.Name))
		case errors.Is(o.Err, errdefs.ErrFilesystem):
		case o.Err != nil:
			a.errOut.Error(o.Err)
		}
	}
}

func cwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errdefs.Filesystem("reading", "current directory", err)
	}
	return dir, nil
}
