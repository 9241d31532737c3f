package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/pkgtype"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Create the gpm home, scripts and repositories directories",
		Long: `Create the gpm home directory with its scripts and repositories
directories, an empty repository registry (config.toml) and a type registry
(types.toml) holding the platform's default shell. Existing files are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Initializing gpm at %s\n", a.home.Home)
			if err := a.home.Init(w); err != nil {
				return err
			}

			if err := initFile(w, a.home.ConfigPath(), func() error {
				repos, err := a.loadRepos()
				if err != nil {
					return err
				}
				return repos.Save()
			}); err != nil {
				return err
			}
			return initFile(w, a.home.TypesPath(), func() error {
				return pkgtype.New(a.home, a.runner).Save()
			})
		},
	}
}

// initFile runs create unless path already exists.
func initFile(w io.Writer, path string, create func() error) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
		return nil
	}
	if err := create(); err != nil {
		return err
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
