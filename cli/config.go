package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/vrt/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change vrt settings",
		Long: `Show and change vrt settings.

Settings are resolved from, highest priority first: command-line flags,
VRT_* environment variables, .vrt.yaml in the git root, and
~/.config/vrt/config.yaml.`,
	}
	cmd.AddCommand(newConfigGetCommand(app))
	cmd.AddCommand(newConfigSetCommand(app))
	cmd.AddCommand(newConfigListCommand(app))
	return cmd
}

func (a *App) resolver() *config.Resolver {
	return config.NewResolver(config.ResolverConfig{
		StartDir:  a.Dir,
		HomeDir:   a.HomeDir,
		ErrWriter: a.Stderr,
	})
}

func newConfigGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the resolved value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.IsKnownKey(args[0]) {
				return fmt.Errorf("unknown config key: %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.resolver().Resolve().Get(args[0]))
			return nil
		},
	}
}

func newConfigSetCommand(app *App) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a setting to the local or global config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.resolver().Save(global, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&global, "global", "g", false, "write ~/.config/vrt/config.yaml instead of .vrt.yaml")
	return cmd
}

func newConfigListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every setting with its value and source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved := app.resolver().Resolve()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, key := range config.Keys {
				value, src := resolved.GetWithSource(key)
				if src == "" {
					src = "unset"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, value, src)
			}
			return tw.Flush()
		},
	}
}
