package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/vrt/deps"
)

func newGraphCommand(app *App) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "deps-graph [path]",
		Short: "Print the module dependency graph as a mermaid chart",
		Long: `Print the dependency graph of the TypeScript modules under the source
directory of the package in path, as a fenced mermaid block ready to paste
into markdown. Tests, type declarations, mocks and node_modules are left
out. Requires dependency-cruiser, run through npx.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.setup(args, nil)
			if err != nil {
				return err
			}

			out, err := deps.Graph(cmd.Context(), e.sh, source)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.Stdout, out)
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", deps.GraphSource, "directory to graph, relative to the package")
	return cmd
}
