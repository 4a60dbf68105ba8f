// Package deps upgrades the npm dependencies of a package to their
// latest versions and reinstalls them.
package deps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/vrt/manifest"
	"github.com/randalmurphal/vrt/notify"
	"github.com/randalmurphal/vrt/report"
	"github.com/randalmurphal/vrt/shell"
)

// Commands run by the upgrade.
const (
	cmdOutdated  = "npm outdated --all --json"
	cmdRemove    = "rm -f package-lock.json && rm -rf node_modules"
	cmdReinstall = "npm i"
)

// Sections lists the manifest sections that are upgraded.
var Sections = []string{manifest.SectionDependencies, manifest.SectionDevDependencies}

// Change records one rewritten dependency spec.
type Change struct {
	Section string
	Name    string
	From    string
	To      string
}

// Upgrader upgrades the dependencies of the package in its shell's directory.
type Upgrader struct {
	sh      *shell.Shell
	rep     *report.Reporter
	emitter *notify.Emitter
	logger  *slog.Logger
}

// Option configures an Upgrader.
type Option func(*Upgrader)

// WithNotifier sends a deps_upgraded event to n when the upgrade finishes.
func WithNotifier(n notify.Notifier) Option {
	return func(u *Upgrader) {
		u.emitter = notify.NewEmitter(n, "")
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Upgrader) {
		u.logger = logger
	}
}

// New creates an Upgrader.
func New(sh *shell.Shell, rep *report.Reporter, opts ...Option) *Upgrader {
	u := &Upgrader{
		sh:     sh,
		rep:    rep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.emitter == nil {
		u.emitter = notify.NewEmitter(nil, "")
	}
	return u
}

// Run rewrites outdated dependency specs in package.json, removes the
// lock file and node_modules, and reinstalls. Failing to remove the old
// install is only a warning.
func (u *Upgrader) Run(ctx context.Context) ([]Change, error) {
	changes, err := report.Step(u.rep, "Upgrade all dependencies", func() ([]Change, error) {
		return u.upgradeManifest(ctx)
	})
	if err != nil {
		return nil, err
	}

	if err := u.rep.Run("Remove lock file and node_modules", func() error {
		_, err := u.sh.Run(ctx, cmdRemove)
		return err
	}); err != nil {
		u.rep.Warnf("could not remove lock file and node_modules: %v", err)
	}

	if err := u.rep.Run("Reinstall all dependencies", func() error {
		_, err := u.sh.Run(ctx, cmdReinstall)
		return err
	}); err != nil {
		return changes, err
	}

	u.rep.Info("All dependencies are up to date")

	upgraded := make([]string, 0, len(changes))
	for _, c := range changes {
		upgraded = append(upgraded, fmt.Sprintf("%s %s -> %s", c.Name, c.From, c.To))
	}
	if err := u.emitter.Emit(ctx, notify.Event{
		Type:     notify.EventDepsUpgraded,
		Message:  fmt.Sprintf("upgraded %d dependencies", len(changes)),
		Metadata: map[string]any{"upgraded": upgraded},
	}); err != nil {
		u.logger.Warn("notification failed", "event", notify.EventDepsUpgraded, "error", err)
	}
	return changes, nil
}

// upgradeManifest queries npm for outdated packages and rewrites their
// specs in package.json. npm outdated exits 1 when anything is outdated,
// so its exit code is ignored.
func (u *Upgrader) upgradeManifest(ctx context.Context) ([]Change, error) {
	res, err := u.sh.Run(ctx, cmdOutdated, shell.AllowFailure())
	if err != nil {
		return nil, err
	}
	outdated, err := ParseOutdated([]byte(res.Stdout))
	if err != nil {
		return nil, err
	}

	pkg, err := manifest.LoadDir(u.sh.Dir())
	if err != nil {
		return nil, err
	}
	u.emitter.SetPackage(pkg.Name())

	var changes []Change
	for _, section := range Sections {
		for _, dep := range pkg.Dependencies(section) {
			info, ok := outdated[dep.Name]
			if !ok {
				continue
			}
			spec, ok := UpgradeSpec(dep.Spec, info.Latest)
			if !ok {
				u.logger.Debug("leaving dependency spec alone", "name", dep.Name, "spec", dep.Spec, "latest", info.Latest)
				continue
			}
			if err := pkg.SetDependency(section, dep.Name, spec); err != nil {
				return nil, err
			}
			changes = append(changes, Change{Section: section, Name: dep.Name, From: dep.Spec, To: spec})
		}
	}

	if len(changes) == 0 {
		return nil, nil
	}
	if err := pkg.Save(""); err != nil {
		return nil, err
	}
	return changes, nil
}
