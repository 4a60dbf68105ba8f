// Package cli implements the vrt command tree.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/vrt/config"
	"github.com/randalmurphal/vrt/report"
	"github.com/randalmurphal/vrt/selector"
	"github.com/randalmurphal/vrt/shell"
)

// App carries the process boundary of a vrt invocation. Zero fields fall
// back to the real process streams and command runner.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Runner executes shell commands. Defaults to shell.NewExecRunner().
	Runner shell.Runner

	// Selector overrides version selection when no version is configured.
	Selector selector.Selector

	// Dir is the working directory. Defaults to ".".
	Dir string

	// HomeDir overrides the home directory used for global config.
	HomeDir string

	// Exit is called by the reporter on fatal errors. Defaults to os.Exit.
	Exit func(code int)

	verbose bool
	noColor bool
}

func (a *App) defaults() {
	if a.Stdin == nil {
		a.Stdin = os.Stdin
	}
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.Runner == nil {
		a.Runner = shell.NewExecRunner()
	}
	if a.Dir == "" {
		a.Dir = "."
	}
	if a.Exit == nil {
		a.Exit = os.Exit
	}
}

// NewRootCommand builds the vrt command tree.
func NewRootCommand(app *App) *cobra.Command {
	app.defaults()

	root := &cobra.Command{
		Use:   "vrt",
		Short: "Release and dependency tooling for npm packages",
		Long: `vrt cuts npm releases and keeps dependencies current.

release-npm bumps the version in package.json, publishes to npm, tags and
pushes the release commit, and writes the release notes to GitHub or GitLab.
deps-upgrade moves every outdated dependency to its latest version, and
deps-graph prints the module dependency graph as a mermaid chart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newReleaseCommand(app))
	root.AddCommand(newDepsCommand(app))
	root.AddCommand(newGraphCommand(app))
	root.AddCommand(newConfigCommand(app))
	return root
}

// Execute runs the command tree and reports any error as a fatal line on
// stderr. It returns the process exit status.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	rep := app.reporter(false)
	rep.Fail(err.Error())
	return 1
}

// env holds what every subcommand needs once flags are parsed.
type env struct {
	dir      string
	gitRoot  string
	settings config.Settings
	logger   *slog.Logger
	rep      *report.Reporter
	sh       *shell.Shell
	bold     lipgloss.Style
}

// setup resolves the package directory and configuration for a command.
func (a *App) setup(pathArg []string, flags map[string]string) (*env, error) {
	dir := a.Dir
	if len(pathArg) > 0 {
		dir = pathArg[0]
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(a.Dir, dir)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	resolver := config.NewResolver(config.ResolverConfig{
		StartDir:  dir,
		HomeDir:   a.HomeDir,
		ErrWriter: a.Stderr,
	})
	if a.noColor {
		if flags == nil {
			flags = map[string]string{}
		}
		flags[config.KeyNoColor] = "true"
	}
	settings, err := resolver.ResolveWithFlags(flags).Settings()
	if err != nil {
		return nil, err
	}

	logger := a.logger()
	renderer := lipgloss.NewRenderer(a.Stderr)
	if settings.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &env{
		dir:      dir,
		gitRoot:  resolver.GitRoot(),
		settings: settings,
		logger:   logger,
		rep:      a.reporter(settings.NoColor),
		sh:       shell.New(dir, shell.WithRunner(a.Runner), shell.WithLogger(logger)),
		bold:     renderer.NewStyle().Bold(true),
	}, nil
}

func (a *App) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: level}))
}

func (a *App) reporter(noColor bool) *report.Reporter {
	opts := []report.Option{report.WithExit(a.Exit)}
	if noColor || a.noColor {
		opts = append(opts, report.WithColor(false))
	}
	return report.New(a.Stderr, opts...)
}
