package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/recovery"
)

func newAddCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:     "add <repository>",
		Aliases: []string{"a"},
		Short:   "Register a repository",
		Long: `Register a repository and create its directory and package registry.

Without --path the repository lives under the repositories directory of the
gpm home. A relative --path is resolved against the current directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			dir := a.home.DefaultRepoPath(name)
			if path != "" {
				wd, err := cwd()
				if err != nil {
					return err
				}
				dir = path
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(wd, dir)
				}
				dir = filepath.Clean(dir)
			}

			repos, err := a.loadRepos()
			if err != nil {
				return err
			}
			repo, err := repos.Add(name, dir)
			if err != nil {
				return err
			}
			if err := repos.Save(); err != nil {
				return err
			}
			a.out.Added(a.out.Name(repo.Name), repo.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Directory of the repository")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var registryOnly bool

	cmd := &cobra.Command{
		Use:     "remove <repository>...",
		Aliases: []string{"r"},
		Short:   "Unregister repositories and delete their directories",
		Long: `Unregister each named repository and delete its directory. When the
directory cannot be deleted you are asked whether to drop the registry entry
anyway. With --registry the directories are left alone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := a.loadRepos()
			if err != nil {
				return err
			}

			var outcomes []recovery.Outcome
			if registryOnly {
				outcomes = repos.RemoveRegistryOnly(args)
			} else {
				outcomes = repos.Remove(args, a.decider)
			}
			if err := repos.Save(); err != nil {
				return err
			}
			a.printOutcomes(outcomes)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&registryOnly, "registry", "r", false, "Only remove the registry entries")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List registered repositories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := a.loadRepos()
			if err != nil {
				return err
			}
			list := repos.List()

			if asJSON {
				return a.out.JSON(list)
			}
			if len(list) == 0 {
				a.out.Summary("No repositories registered.")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, r := range list {
				rows = append(rows, []string{r.Name, r.Path})
			}
			a.out.Section("Repositories:")
			return a.out.Table([]string{"NAME", "PATH"}, rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
