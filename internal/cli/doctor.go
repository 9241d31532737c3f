package cli

import (
	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/doctor"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the registries against the filesystem",
		Long: `Check that the gpm home layout exists, that every type has a script and a
registered shell, that every repository has its directory and package
registry, and that every package references a known type. Nothing is
changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := a.loadRepos()
			if err != nil {
				return err
			}
			types, err := a.loadTypes()
			if err != nil {
				return err
			}

			report := doctor.Run(a.home, repos, types)
			report.Print(cmd.OutOrStdout())
			if n := report.Problems(); n > 0 {
				a.out.Summary("\n%d problems found.", n)
			} else {
				a.out.Summary("\nNo problems found.")
			}
			return nil
		},
	}
}
