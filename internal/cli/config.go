package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gpm-labs/gpm/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user settings",
		Long: `Read and write gpm settings stored in settings.yaml inside the gpm home.
Every key can also be set through the environment, e.g. GPM_LOG_LEVEL.`,
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := a.settings.Set(key, value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.settings.Get(args[0]))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every setting with its current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(config.Keys()))
			for _, k := range config.Keys() {
				rows = append(rows, []string{k, a.settings.Get(k)})
			}
			return a.out.Table([]string{"KEY", "VALUE"}, rows)
		},
	}

	cmd.AddCommand(set, get, list)
	return cmd
}
