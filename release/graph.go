package release

import (
	"context"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/vrt/git"
	"github.com/randalmurphal/vrt/manifest"
)

// Nodes of the release graph, in pipeline order. publish is skipped for
// private packages; exactly one of edit and create runs.
const (
	nodeBranch   = "check-branch"
	nodeClean    = "check-clean"
	nodePull     = "pull"
	nodeManifest = "load-manifest"
	nodeLastTag  = "last-tag"
	nodeTip      = "current-commit"
	nodeVersion  = "select-version"
	nodeChecks   = "run-checks"
	nodeWrite    = "update-version"
	nodeNotes    = "release-notes"
	nodePublish  = "npm-publish"
	nodeAdd      = "git-add"
	nodeCommit   = "git-commit"
	nodeTag      = "git-tag"
	nodePush     = "git-push"
	nodeLookup   = "check-release"
	nodeEdit     = "edit-release"
	nodeCreate   = "create-release"
)

// State is carried from one release step to the next.
//
// Updates: Manifest (load-manifest), LastTag (last-tag), Tip
// (current-commit), ReleaseExists (check-release), and Result as each
// step completes.
type State struct {
	Manifest      *manifest.Manifest
	LastTag       *git.ReleaseTag
	Tip           git.Commit
	ReleaseExists bool
	Result        Result
}

// run records the progress of one graph execution.
type run struct {
	// state is the output of the last step that succeeded.
	state State
	// err is the unmodified error of the step that failed.
	err error
}

type stepFunc func(ctx context.Context, st *State) error

// node adapts a step to a flowgraph node.
func (r *run) node(step stepFunc) flowgraph.NodeFunc[State] {
	return func(ctx flowgraph.Context, st State) (State, error) {
		if err := step(ctx, &st); err != nil {
			r.err = err
			return st, err
		}
		r.state = st
		return st, nil
	}
}
