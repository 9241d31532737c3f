package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/branding"
)

func newVersionCmd(a *app) *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, a.build.version)
				return nil
			}

			if asJSON {
				return a.out.JSON(map[string]string{
					"version":    a.build.version,
					"commit":     a.build.commit,
					"date":       a.build.date,
					"repository": branding.GitHubRepo(),
				})
			}

			fmt.Fprintf(w, "gpm version %s (commit: %s, built: %s)\n", a.build.version, a.build.commit, a.build.date)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print version number only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version info as JSON")
	return cmd
}
