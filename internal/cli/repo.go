package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gpm-labs/gpm/internal/lifecycle"
)

// newRepoCmd returns "repo <repository> <command>". The repository name comes
// before the subcommand, so everything after it is handed to the command tree
// built by newRepoSubcommands.
func newRepoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repo <repository> <command> [args...]",
		Short: "Manage the packages of a repository",
		Long: `Manage the packages of one repository.

Commands:
  add <package> <type> [args...]   Install a package with its type script
  remove <package>...              Delete packages and their artifacts
  remove-tag                       Clear every cache token of the repository
  update <package>... | --all      Re-run type scripts with the stored token
  clone <package>...               Copy package artifacts into a directory
  list                             List the repository's packages`,
		Example: `  gpm repo tools add rg github BurntSushi/ripgrep
  gpm repo tools update --all
  gpm repo tools list --json`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Global flags may precede the repository name.
			fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
			fs.SetInterspersed(false)
			fs.SetOutput(io.Discard)
			fs.AddFlagSet(cmd.InheritedFlags())
			help := fs.BoolP("help", "h", false, "")
			if err := fs.Parse(args); err != nil {
				return err
			}
			if *help || fs.NArg() == 0 {
				return cmd.Help()
			}

			sub := newRepoSubcommands(a, fs.Arg(0))
			sub.SetArgs(fs.Args()[1:])
			sub.SetIn(cmd.InOrStdin())
			sub.SetOut(cmd.OutOrStdout())
			sub.SetErr(cmd.ErrOrStderr())
			return sub.ExecuteContext(cmd.Context())
		},
	}
}

func newRepoSubcommands(a *app, repoName string) *cobra.Command {
	root := &cobra.Command{
		Use:           "repo " + repoName,
		Short:         "Manage the packages of repository " + repoName,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.homeFlag, "home", a.homeFlag, "gpm home directory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", a.verbose, "Log script invocations and registry changes")
	root.PersistentPreRunE = a.setup

	s := &repoSession{app: a, name: repoName}
	root.AddCommand(
		s.newAddCmd(),
		s.newRemoveCmd(),
		s.newRemoveTagCmd(),
		s.newUpdateCmd(),
		s.newCloneCmd(),
		s.newListCmd(),
	)
	return root
}

// repoSession opens one repository's package registry for a subcommand.
type repoSession struct {
	*app
	name string
}

func (s *repoSession) open() (*lifecycle.Repo, error) {
	repos, err := s.loadRepos()
	if err != nil {
		return nil, err
	}
	repo, err := repos.Get(s.name)
	if err != nil {
		return nil, err
	}
	types, err := s.loadTypes()
	if err != nil {
		return nil, err
	}
	return lifecycle.Load(repo.Path, types)
}

func (s *repoSession) newAddCmd() *cobra.Command {
	var (
		withCwd  bool
		postArgs []string
	)

	cmd := &cobra.Command{
		Use:     "add <package> <type> [args...]",
		Aliases: []string{"a"},
		Short:   "Install a package by running its type script",
		Long: `Install a package by running its type script inside the repository
directory. The script's output becomes the package's cache token and the
type's post-hook runs when the output is non-empty.

Flags go before the package name; everything after the type is passed to the
script unchanged.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := s.open()
			if err != nil {
				return err
			}

			p := lifecycle.Package{Name: args[0], Type: args[1], Args: args[2:], PostArgs: postArgs}
			if withCwd {
				if p.WorkingDir, err = cwd(); err != nil {
					return err
				}
			}

			addErr := repo.Add(cmd.Context(), p)
			if addErr != nil && !errors.Is(addErr, lifecycle.ErrPostHook) {
				return addErr
			}
			if err := repo.Save(); err != nil {
				return err
			}

			added, _ := repo.Get(p.Name)
			fields := []string{s.out.Name(added.Name), s.out.Detail(added.Type)}
			if added.CacheToken != "" {
				fields = append(fields, added.CacheToken)
			}
			s.out.Added(fields...)
			return addErr
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&withCwd, "cwd", "c", false, "Pass the current directory to the script as -cwd")
	cmd.Flags().StringArrayVar(&postArgs, "post", nil, "Argument for the post-hook script (repeatable)")
	return cmd
}

func (s *repoSession) newRemoveCmd() *cobra.Command {
	var registryOnly bool

	cmd := &cobra.Command{
		Use:     "remove <package>...",
		Aliases: []string{"r"},
		Short:   "Remove packages and delete their artifacts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := s.open()
			if err != nil {
				return err
			}

			outcomes := repo.Remove(args, registryOnly, s.decider)
			if err := repo.Save(); err != nil {
				return err
			}
			s.printOutcomes(outcomes)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&registryOnly, "registry", "r", false, "Only remove the registry entries")
	return cmd
}

func (s *repoSession) newRemoveTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove-tag",
		Aliases: []string{"t"},
		Short:   "Clear the cache token of every package",
		Long: `Clear the cache token of every package in the repository, so the next
update runs each type script as if the package were new.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := s.open()
			if err != nil {
				return err
			}
			n := repo.RemoveCacheTokens()
			if err := repo.Save(); err != nil {
				return err
			}
			s.out.Summary("Cleared %d cache tokens in %s.", n, s.name)
			return nil
		},
	}
}

func (s *repoSession) newUpdateCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "update <package>... | --all",
		Aliases: []string{"u"},
		Short:   "Re-run type scripts with the stored cache tokens",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all does not take package names")
			}
			if !all && len(args) == 0 {
				return errors.New("name at least one package or pass --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := s.open()
			if err != nil {
				return err
			}

			var results []lifecycle.UpdateResult
			if all {
				results = repo.UpdateAll(cmd.Context())
			} else {
				results = repo.Update(cmd.Context(), args)
			}
			if err := repo.Save(); err != nil {
				return err
			}

			changed := 0
			for _, r := range results {
				switch {
				case r.Err != nil:
					s.errOut.Error(r.Err)
				case r.Changed:
					changed++
					s.out.Updated(s.out.Name(r.Name), r.Token)
				case r.Ran:
					s.out.Updated(s.out.Name(r.Name), r.Token, s.out.Detail("(unchanged)"))
				}
			}
			s.out.Summary("%d of %d packages changed.", changed, len(results))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Update every package in the repository")
	return cmd
}

func (s *repoSession) newCloneCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:     "clone <package>...",
		Aliases: []string{"c"},
		Short:   "Copy package artifacts into a directory",
		Long: `Copy each package's artifact (the file or directory named after the
package inside the repository) into the destination, the current directory
by default. The registry is not changed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := s.open()
			if err != nil {
				return err
			}
			if dest == "" {
				if dest, err = cwd(); err != nil {
					return err
				}
			}

			for _, r := range repo.Copy(args, dest) {
				if r.Err != nil {
					s.errOut.Error(r.Err)
					continue
				}
				s.out.Cloned(s.out.Name(r.Name), r.Dest)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory (default current directory)")
	return cmd
}

func (s *repoSession) newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List the packages of the repository",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := s.open()
			if err != nil {
				return err
			}
			packages := repo.Packages()

			if asJSON {
				return s.out.JSON(packages)
			}
			if len(packages) == 0 {
				s.out.Summary("No packages in %s.", s.name)
				return nil
			}

			rows := make([][]string, 0, len(packages))
			for _, p := range packages {
				rows = append(rows, []string{p.Name, p.Type, strings.Join(p.Args, ", "), p.WorkingDir, p.CacheToken})
			}
			s.out.Section("Packages:")
			return s.out.Table([]string{"NAME", "TYPE", "ARGS", "CWD", "ETAG"}, rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
