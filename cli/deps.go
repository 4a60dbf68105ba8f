package cli

import (
	"github.com/spf13/cobra"

	"github.com/randalmurphal/vrt/deps"
)

func newDepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deps-upgrade [path]",
		Short: "Upgrade every outdated dependency to its latest version",
		Long: `Upgrade the dependencies of the npm package in path.

Outdated entries in dependencies and devDependencies are rewritten to the
latest published version, keeping a leading ^ or ~. Specs that are not a
plain version (tags, file:, git+, workspace:) are left alone. The lock file
and node_modules are then removed and everything is reinstalled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.setup(args, nil)
			if err != nil {
				return err
			}

			u := deps.New(e.sh, e.rep,
				deps.WithNotifier(notifierFor(e)),
				deps.WithLogger(e.logger),
			)
			changes, err := u.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range changes {
				e.logger.Debug("dependency upgraded", "section", c.Section, "name", c.Name, "from", c.From, "to", c.To)
			}
			return nil
		},
	}
}
