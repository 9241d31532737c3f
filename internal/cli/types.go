package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/pkgtype"
	"github.com/gpm-labs/gpm/internal/recovery"
)

func newTypeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "type",
		Aliases: []string{"t"},
		Short:   "Manage package types and the shells that run them",
		Long: `Manage package types. A type named "github" with extension "sh" is the
script github.sh in the scripts directory, run by the type's shell. An
optional github.post.sh runs after each install or update that produced a
cache token.`,
	}
	cmd.AddCommand(
		newTypeAddCmd(a),
		newTypeRemoveCmd(a),
		newTypeListCmd(a),
		newShellCmd(a),
	)
	return cmd
}

func newTypeAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <type> <ext> [shell]",
		Aliases: []string{"a"},
		Short:   "Register a type and create its script stub",
		Long: `Register a type and create an empty script <type>.<ext> in the scripts
directory unless it exists. The shell must be registered; it defaults to
` + pkgtype.DefaultShell() + `.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.loadTypes()
			if err != nil {
				return err
			}

			var shell string
			if len(args) == 3 {
				shell = args[2]
			}
			if err := types.Add(args[0], args[1], shell); err != nil {
				return err
			}
			if err := types.Save(); err != nil {
				return err
			}

			t, err := types.Resolve(args[0])
			if err != nil {
				return err
			}
			a.out.Added(a.out.Name(t.Name), types.ScriptPath(t))
			return nil
		},
	}
}

func newTypeRemoveCmd(a *app) *cobra.Command {
	var registryOnly bool

	cmd := &cobra.Command{
		Use:     "remove <type>...",
		Aliases: []string{"r"},
		Short:   "Unregister types and delete their scripts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.loadTypes()
			if err != nil {
				return err
			}

			outcomes := types.Remove(args, registryOnly, a.decider)
			if err := types.Save(); err != nil {
				return err
			}
			a.printOutcomes(outcomes)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&registryOnly, "registry", "r", false, "Keep the scripts, only remove the registry entries")
	return cmd
}

// typeListing is the --json form of "type list".
type typeListing struct {
	Shells []pkgtype.Shell `json:"shells"`
	Types  []pkgtype.Type  `json:"types"`
}

func newTypeListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List registered shells and types",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.loadTypes()
			if err != nil {
				return err
			}
			listing := typeListing{Shells: types.Shells(), Types: types.Types()}

			if asJSON {
				return a.out.JSON(listing)
			}

			shellRows := make([][]string, 0, len(listing.Shells))
			for _, sh := range listing.Shells {
				shellRows = append(shellRows, []string{sh.Name, strings.Join(sh.Args, " ")})
			}
			a.out.Section("Shells:")
			if err := a.out.Table([]string{"NAME", "ARGS"}, shellRows); err != nil {
				return err
			}

			typeRows := make([][]string, 0, len(listing.Types))
			for _, t := range listing.Types {
				shell := t.Shell
				if shell == "" {
					shell = pkgtype.DefaultShell() + " (default)"
				}
				typeRows = append(typeRows, []string{t.Name, t.Ext, shell})
			}
			a.out.Section("Types:")
			return a.out.Table([]string{"NAME", "EXT", "SHELL"}, typeRows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newShellCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Manage the shells type scripts run under",
	}

	add := &cobra.Command{
		Use:   "add <shell> [args...]",
		Short: "Register a shell with the arguments placed before every script",
		Example: `  gpm type shell add bash
  gpm type shell add pwsh -NoProfile -File`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.loadTypes()
			if err != nil {
				return err
			}
			if err := types.AddShell(args[0], args[1:]); err != nil {
				return err
			}
			if err := types.Save(); err != nil {
				return err
			}
			a.out.Added(append([]string{a.out.Name(args[0])}, args[1:]...)...)
			return nil
		},
	}
	add.Flags().SetInterspersed(false)

	remove := &cobra.Command{
		Use:   "remove <shell>...",
		Short: "Unregister shells no type uses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.loadTypes()
			if err != nil {
				return err
			}

			outcomes := make([]recovery.Outcome, 0, len(args))
			for _, name := range args {
				err := types.RemoveShell(name)
				outcomes = append(outcomes, recovery.Outcome{Name: name, Removed: err == nil, Err: err})
			}
			if err := types.Save(); err != nil {
				return err
			}
			a.printOutcomes(outcomes)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
