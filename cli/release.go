package cli

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/vrt/config"
	vrterrors "github.com/randalmurphal/vrt/errors"
	"github.com/randalmurphal/vrt/hosting"
	"github.com/randalmurphal/vrt/notes"
	"github.com/randalmurphal/vrt/notify"
	"github.com/randalmurphal/vrt/release"
	"github.com/randalmurphal/vrt/selector"
)

type releaseFlags struct {
	branch     string
	version    string
	backend    string
	draft      bool
	prerelease bool
}

func newReleaseCommand(app *App) *cobra.Command {
	var f releaseFlags

	cmd := &cobra.Command{
		Use:   "release-npm [path]",
		Short: "Release the npm package in path (default: current directory)",
		Long: `Release the npm package in path.

The release must start on the configured branch with a clean working tree.
vrt pulls, runs "npm run check", asks for the next version, writes it to
package.json, publishes to npm (unless the package is private), commits,
tags and pushes v<version>, and creates or updates the hosted release with
notes listing every commit since the previous release tag.

Set --version (or the version config key) to keep, patch, minor, major or
an explicit X.Y.Z to answer the version prompt without a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := map[string]string{
				config.KeyBranch:  f.branch,
				config.KeyVersion: f.version,
				config.KeyBackend: f.backend,
			}
			if cmd.Flags().Changed("draft") {
				flags[config.KeyDraft] = strconv.FormatBool(f.draft)
			}
			if cmd.Flags().Changed("prerelease") {
				flags[config.KeyPrerelease] = strconv.FormatBool(f.prerelease)
			}

			e, err := app.setup(args, flags)
			if err != nil {
				return err
			}
			if e.gitRoot == "" {
				return vrterrors.NewNotInGitRepoError(e.dir)
			}

			publisher, err := hosting.New(e.settings.Backend, e.sh, hosting.Options{
				Draft:      e.settings.Draft,
				Prerelease: e.settings.Prerelease,
			})
			if err != nil {
				if errors.Is(err, hosting.ErrNoToken) {
					return vrterrors.NewMissingTokenError(backendService(e.settings.Backend), tokenEnvVars(e.settings.Backend)...)
				}
				return err
			}

			o := release.New(e.sh, e.rep,
				release.WithBranch(e.settings.Branch),
				release.WithRequiredScripts(e.settings.RequiredScripts...),
				release.WithSelector(app.versionSelector(e.settings.Version)),
				release.WithPublisher(publisher),
				release.WithNotesLoader(notes.NewLoader(e.dir)),
				release.WithNotifier(notifierFor(e)),
				release.WithLogger(e.logger),
				release.WithEmphasis(e.bold),
			)
			e.logger.Debug("starting release", "dir", e.dir, "run_id", o.RunID(), "backend", e.settings.Backend)

			if _, err := o.Run(cmd.Context()); err != nil {
				return decorate(err, backendService(e.settings.Backend))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.branch, "branch", "", "branch releases are cut from (default main)")
	cmd.Flags().StringVar(&f.version, "version", "", "next version: keep, patch, minor, major or X.Y.Z")
	cmd.Flags().StringVar(&f.backend, "backend", "", "release backend: gh, github or gitlab (default gh)")
	cmd.Flags().BoolVar(&f.draft, "draft", false, "create the hosted release as a draft")
	cmd.Flags().BoolVar(&f.prerelease, "prerelease", false, "mark the hosted release as a prerelease")
	return cmd
}

// versionSelector answers from configuration when a version is set and
// prompts on the terminal otherwise.
func (a *App) versionSelector(answer string) selector.Selector {
	if answer != "" {
		return selector.Scripted{Answer: answer}
	}
	if a.Selector != nil {
		return a.Selector
	}
	return selector.NewTerminal(selector.WithInput(a.Stdin), selector.WithOutput(a.Stderr))
}

// notifierFor builds the notifier chain from configuration. Events are
// logged at debug level so they only show with --verbose.
func notifierFor(e *env) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLogNotifier(e.logger, notify.WithLogLevel(slog.LevelDebug))}
	if url := e.settings.WebhookURL; url != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(url, nil))
	}
	if url := e.settings.SlackWebhookURL; url != "" {
		var opts []notify.SlackOption
		if ch := e.settings.SlackChannel; ch != "" {
			opts = append(opts, notify.WithSlackChannel(ch))
		}
		notifiers = append(notifiers, notify.NewSlackNotifier(url, opts...))
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	return notify.NewMultiNotifier(notifiers...)
}

func backendService(backend string) string {
	if backend == hosting.BackendGitLab {
		return "GitLab"
	}
	return "GitHub"
}

func tokenEnvVars(backend string) []string {
	if backend == hosting.BackendGitLab {
		return []string{"GITLAB_TOKEN", "GIT_TOKEN"}
	}
	return []string{"GITHUB_TOKEN", "GIT_TOKEN"}
}
