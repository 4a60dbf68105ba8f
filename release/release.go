package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	vrterrors "github.com/randalmurphal/vrt/errors"
	"github.com/randalmurphal/vrt/git"
	"github.com/randalmurphal/vrt/hosting"
	"github.com/randalmurphal/vrt/manifest"
	"github.com/randalmurphal/vrt/notes"
	"github.com/randalmurphal/vrt/notify"
	"github.com/randalmurphal/vrt/report"
	"github.com/randalmurphal/vrt/selector"
	"github.com/randalmurphal/vrt/shell"
	"github.com/randalmurphal/vrt/version"
)

// DefaultBranch is the branch releases are cut from unless configured.
const DefaultBranch = "main"

// DefaultRequiredScripts must exist in package.json before a release.
var DefaultRequiredScripts = []string{"check", "prepack"}

// Commands run by the pipeline.
const (
	cmdCheck        = "npm run check"
	cmdLockfileOnly = "npm i --package-lock-only"
	cmdPublish      = "npm publish --access public"
)

// DefaultNotifyTimeout bounds the time spent delivering one notification.
const DefaultNotifyTimeout = 15 * time.Second

// Result describes a finished release.
type Result struct {
	Package string
	// PreviousVersion is the package.json version before the release.
	PreviousVersion string
	Version         string
	Tag             string
	Notes           string
	// PublishedToNPM is false for private packages.
	PublishedToNPM bool
	// ReleaseCreated is false when an existing hosted release was edited.
	ReleaseCreated bool
}

// Orchestrator runs the release pipeline for one package directory.
type Orchestrator struct {
	sh        *shell.Shell
	repo      *git.Repo
	rep       *report.Reporter
	selector  selector.Selector
	publisher hosting.Publisher
	notes     *notes.Loader
	emitter   *notify.Emitter
	logger    *slog.Logger
	bold      lipgloss.Style
	branch    string
	required  []string
	// notifyTimeout bounds each emit, including webhook retries.
	notifyTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBranch sets the only branch a release may be cut from.
func WithBranch(branch string) Option {
	return func(o *Orchestrator) {
		if branch != "" {
			o.branch = branch
		}
	}
}

// WithRequiredScripts replaces the npm scripts package.json must define.
func WithRequiredScripts(scripts ...string) Option {
	return func(o *Orchestrator) {
		if len(scripts) > 0 {
			o.required = scripts
		}
	}
}

// WithSelector sets how the next version is chosen.
func WithSelector(s selector.Selector) Option {
	return func(o *Orchestrator) {
		o.selector = s
	}
}

// WithPublisher sets the release-hosting backend.
func WithPublisher(p hosting.Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

// WithNotesLoader sets the release notes template loader.
func WithNotesLoader(l *notes.Loader) Option {
	return func(o *Orchestrator) {
		o.notes = l
	}
}

// WithNotifier sends release events to n.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.emitter = notify.NewEmitter(n, "")
	}
}

// WithNotifyTimeout bounds the delivery of each notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithEmphasis sets the style of the bumped version component in the
// version prompt.
func WithEmphasis(style lipgloss.Style) Option {
	return func(o *Orchestrator) {
		o.bold = style
	}
}

// New creates an Orchestrator for the package in sh's directory. Without
// options it requires branch main, answers the version prompt with the
// default patch bump and publishes through the gh CLI.
func New(sh *shell.Shell, rep *report.Reporter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sh:       sh,
		repo:     git.NewRepo(sh),
		rep:      rep,
		logger:   slog.Default(),
		bold:     lipgloss.NewStyle().Bold(true),
		branch:   DefaultBranch,
		required: DefaultRequiredScripts,

		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.selector == nil {
		o.selector = selector.Scripted{}
	}
	if o.publisher == nil {
		o.publisher = hosting.NewGHCLI(sh, hosting.Options{})
	}
	if o.notes == nil {
		o.notes = notes.NewLoader(sh.Dir())
	}
	if o.emitter == nil {
		o.emitter = notify.NewEmitter(nil, "")
	}
	return o
}

// RunID returns the identifier stamped on this run's notifications.
func (o *Orchestrator) RunID() string {
	return o.emitter.RunID()
}

// Run executes the release pipeline. Errors that stop the release before
// anything was changed are *errors.CLIError values wrapping
// errors.ErrFatalInput; step failures are returned unchanged.
func (o *Orchestrator) Run(ctx context.Context) (res *Result, err error) {
	o.rep.Info("starting release process")
	o.emit(ctx, notify.Event{
		Type:    notify.EventReleaseStarted,
		Message: "release started",
		Metadata: map[string]any{
			"dir":    o.sh.Dir(),
			"branch": o.branch,
		},
	})

	r := &run{}
	defer func() {
		if err == nil {
			return
		}
		o.emit(ctx, notify.Event{
			Type:     notify.EventReleaseFailed,
			Version:  r.state.Result.Version,
			Message:  err.Error(),
			Severity: notify.SeverityError,
		})
	}()

	final, err := o.execute(ctx, r)
	if err != nil {
		return nil, err
	}
	res = &final.Result

	o.rep.Info("Finished")
	o.emit(ctx, notify.Event{
		Type:    notify.EventReleasePublished,
		Version: res.Version,
		Message: fmt.Sprintf("released %s", res.Tag),
		Metadata: map[string]any{
			"tag":             res.Tag,
			"previous":        res.PreviousVersion,
			"npm":             res.PublishedToNPM,
			"release_created": res.ReleaseCreated,
		},
	})
	return res, nil
}

// execute builds the release graph and runs it. The error of the failing
// step is returned as the step produced it.
func (o *Orchestrator) execute(ctx context.Context, r *run) (State, error) {
	compiled, err := flowgraph.NewGraph[State]().
		AddNode(nodeBranch, r.node(o.checkBranch)).
		AddNode(nodeClean, r.node(o.checkClean)).
		AddNode(nodePull, r.node(o.pull)).
		AddNode(nodeManifest, r.node(o.loadManifest)).
		AddNode(nodeLastTag, r.node(o.lastTag)).
		AddNode(nodeTip, r.node(o.currentCommit)).
		AddNode(nodeVersion, r.node(o.selectVersion)).
		AddNode(nodeChecks, r.node(o.runChecks)).
		AddNode(nodeWrite, r.node(o.writeVersion)).
		AddNode(nodeNotes, r.node(o.prepareNotes)).
		AddNode(nodePublish, r.node(o.publishNPM)).
		AddNode(nodeAdd, r.node(o.stage)).
		AddNode(nodeCommit, r.node(o.commit)).
		AddNode(nodeTag, r.node(o.tag)).
		AddNode(nodePush, r.node(o.push)).
		AddNode(nodeLookup, r.node(o.lookupRelease)).
		AddNode(nodeEdit, r.node(o.editRelease)).
		AddNode(nodeCreate, r.node(o.createRelease)).
		AddEdge(nodeBranch, nodeClean).
		AddEdge(nodeClean, nodePull).
		AddEdge(nodePull, nodeManifest).
		AddEdge(nodeManifest, nodeLastTag).
		AddEdge(nodeLastTag, nodeTip).
		AddEdge(nodeTip, nodeVersion).
		AddEdge(nodeVersion, nodeChecks).
		AddEdge(nodeChecks, nodeWrite).
		AddEdge(nodeWrite, nodeNotes).
		AddConditionalEdge(nodeNotes, o.routePublish).
		AddEdge(nodePublish, nodeAdd).
		AddEdge(nodeAdd, nodeCommit).
		AddEdge(nodeCommit, nodeTag).
		AddEdge(nodeTag, nodePush).
		AddEdge(nodePush, nodeLookup).
		AddConditionalEdge(nodeLookup, routeRelease).
		AddEdge(nodeEdit, flowgraph.END).
		AddEdge(nodeCreate, flowgraph.END).
		SetEntry(nodeBranch).
		Compile()
	if err != nil {
		return State{}, fmt.Errorf("compile release graph: %w", err)
	}

	final, err := compiled.Run(flowgraph.NewContext(ctx), State{})
	if r.err != nil {
		return r.state, r.err
	}
	if err != nil {
		return r.state, err
	}
	return final, nil
}

// routePublish skips npm publish for private packages.
func (o *Orchestrator) routePublish(_ flowgraph.Context, st State) string {
	if st.Manifest.Private() {
		o.logger.Debug("skipping npm publish for private package", "package", st.Result.Package)
		return nodeAdd
	}
	return nodePublish
}

// routeRelease edits an existing hosted release and creates a missing one.
func routeRelease(_ flowgraph.Context, st State) string {
	if st.ReleaseExists {
		return nodeEdit
	}
	return nodeCreate
}

func (o *Orchestrator) checkBranch(ctx context.Context, st *State) error {
	branch, err := report.Step(o.rep, "get branch name", func() (string, error) {
		return o.repo.CurrentBranch(ctx)
	})
	if err != nil {
		return err
	}
	if branch != o.branch {
		return vrterrors.NewWrongBranchError(branch, o.branch)
	}
	return nil
}

func (o *Orchestrator) checkClean(ctx context.Context, st *State) error {
	return o.rep.Run("are all changes committed?", func() error {
		err := o.repo.RequireClean(ctx)
		var dirty *git.DirtyError
		if errors.As(err, &dirty) {
			return vrterrors.NewDirtyTreeError(dirty.Status)
		}
		return err
	})
}

func (o *Orchestrator) pull(ctx context.Context, st *State) error {
	return o.rep.Run("git pull", func() error {
		_, err := o.repo.PullWithTags(ctx)
		return err
	})
}

func (o *Orchestrator) lastTag(ctx context.Context, st *State) error {
	tag, err := report.Step(o.rep, "get last github tag", func() (*git.ReleaseTag, error) {
		return o.repo.LastReleaseTag(ctx)
	})
	if err != nil {
		return err
	}
	st.LastTag = tag

	var versionLast string
	if tag != nil {
		versionLast = tag.Version
	}
	if st.Result.PreviousVersion != versionLast {
		o.rep.Warnf("versions differ in package.json (%s) and last GitHub tag (%s)", st.Result.PreviousVersion, versionLast)
	}
	return nil
}

func (o *Orchestrator) currentCommit(ctx context.Context, st *State) error {
	tip, err := report.Step(o.rep, "get current github commit", func() (git.Commit, error) {
		return o.repo.CurrentRemoteCommit(ctx)
	})
	if err != nil {
		return err
	}
	st.Tip = tip
	return nil
}

func (o *Orchestrator) runChecks(ctx context.Context, st *State) error {
	return o.rep.Run("run checks", func() error {
		_, err := o.sh.Run(ctx, cmdCheck)
		return err
	})
}

func (o *Orchestrator) prepareNotes(ctx context.Context, st *State) error {
	var shaLast string
	if st.LastTag != nil {
		shaLast = st.LastTag.SHA
	}
	body, err := report.Step(o.rep, "prepare release notes", func() (string, error) {
		commits, err := o.repo.CommitsBetween(ctx, shaLast, st.Tip.SHA)
		if err != nil {
			return "", err
		}
		return o.notes.Render(st.Result.Version, commits)
	})
	if err != nil {
		return err
	}
	st.Result.Notes = body
	return nil
}

func (o *Orchestrator) publishNPM(ctx context.Context, st *State) error {
	if err := o.rep.Run("npm publish", func() error {
		return o.sh.RunInteractive(ctx, cmdPublish)
	}); err != nil {
		return err
	}
	st.Result.PublishedToNPM = true
	return nil
}

// loadManifest reads and validates package.json. Malformed JSON is
// returned as a plain parse error; structural problems are fatal.
func (o *Orchestrator) loadManifest(_ context.Context, st *State) error {
	pkg, err := manifest.LoadDir(o.sh.Dir())
	if err != nil {
		if errors.Is(err, manifest.ErrNotObject) {
			return vrterrors.Fatal(err, "package.json is not valid")
		}
		return err
	}
	if err := pkg.Validate(o.required...); err != nil {
		return vrterrors.Fatal(err, "%s", err.Error())
	}

	st.Manifest = pkg
	st.Result.Package = pkg.Name()
	st.Result.PreviousVersion, _ = pkg.Version()
	o.emitter.SetPackage(st.Result.Package)
	return nil
}

// selectVersion asks for the next version among the current version and
// its patch, minor and major bumps.
func (o *Orchestrator) selectVersion(ctx context.Context, st *State) error {
	current := st.Result.PreviousVersion
	v, err := version.Parse(current)
	if err != nil {
		return vrterrors.Fatal(err, "cannot bump version %q from package.json", current)
	}

	choices := selector.VersionChoices(version.Candidates(v), o.bold)
	next, err := o.selector.Select(ctx, selector.Question, choices, version.DefaultCandidate)
	if err != nil {
		if errors.Is(err, selector.ErrNoMatch) {
			return vrterrors.Fatal(err, "%s", err.Error()).
				WithSuggestion("Use keep, patch, minor, major or one of the listed versions.")
		}
		return err
	}
	if next == "" {
		return vrterrors.Fatal(nil, "no version selected")
	}

	st.Result.Version = next
	st.Result.Tag = "v" + next
	o.logger.Debug("version selected", "from", current, "to", next, "tag", st.Result.Tag)
	return nil
}

// writeVersion saves the new version to package.json and refreshes the
// lockfile without changing dependency resolution.
func (o *Orchestrator) writeVersion(ctx context.Context, st *State) error {
	return o.rep.Run("update version", func() error {
		if err := st.Manifest.SetVersion(st.Result.Version); err != nil {
			return err
		}
		if err := st.Manifest.Save(""); err != nil {
			return err
		}
		_, err := o.sh.Run(ctx, cmdLockfileOnly)
		return err
	})
}

func (o *Orchestrator) stage(ctx context.Context, st *State) error {
	return o.rep.Run("git add", func() error {
		_, err := o.repo.StageAll(ctx)
		return err
	})
}

// commit tolerates "nothing to commit".
func (o *Orchestrator) commit(ctx context.Context, st *State) error {
	return o.rep.Run("git commit", func() error {
		res, err := o.repo.Commit(ctx, st.Result.Tag)
		if err == nil && !res.Success() {
			o.logger.Debug("git commit exited non-zero", "exit_code", res.ExitCode, "stdout", res.Stdout)
		}
		return err
	})
}

func (o *Orchestrator) tag(ctx context.Context, st *State) error {
	return o.rep.Run("git tag", func() error {
		_, err := o.repo.ForceAnnotatedTag(ctx, st.Result.Tag, "new release: "+st.Result.Tag)
		return err
	})
}

func (o *Orchestrator) push(ctx context.Context, st *State) error {
	return o.rep.Run("git push", func() error {
		_, err := o.repo.PushFollowTags(ctx)
		return err
	})
}

func (o *Orchestrator) lookupRelease(ctx context.Context, st *State) error {
	exists, err := report.Step(o.rep, "check github release", func() (bool, error) {
		return o.publisher.Exists(ctx, st.Result.Tag)
	})
	if err != nil {
		return err
	}
	st.ReleaseExists = exists
	return nil
}

func (o *Orchestrator) editRelease(ctx context.Context, st *State) error {
	return o.rep.Run("edit release", func() error {
		return o.publisher.Edit(ctx, st.Result.Tag, st.Result.Notes)
	})
}

func (o *Orchestrator) createRelease(ctx context.Context, st *State) error {
	if err := o.rep.Run("create release", func() error {
		return o.publisher.Create(ctx, st.Result.Tag, st.Result.Notes)
	}); err != nil {
		return err
	}
	st.Result.ReleaseCreated = true
	return nil
}

// emit sends ev, waiting at most the notify timeout. Failures are logged
// and never stop the release.
func (o *Orchestrator) emit(ctx context.Context, ev notify.Event) {
	ctx, cancel := context.WithTimeout(ctx, o.notifyTimeout)
	defer cancel()
	if err := o.emitter.Emit(ctx, ev); err != nil {
		o.logger.Warn("notification failed", "event", ev.Type, "error", err)
	}
}
