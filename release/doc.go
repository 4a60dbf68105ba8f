// Package release cuts an npm release from a clean checkout.
//
// The Orchestrator runs the release as a flowgraph graph over State:
// branch and working-tree checks, pull, package.json validation, version
// selection, checks, version write-back, release notes, npm publish,
// commit, tag, push, and finally the hosted release. Two edges are
// conditional. Private packages skip npm publish, and the hosted-release
// lookup routes to either edit or create. Each side effect is reported as
// a step through report.Reporter. A failed step aborts the run; nothing is
// retried or rolled back.
//
//	sh := shell.New(dir)
//	o := release.New(sh, report.New(os.Stderr),
//	    release.WithBranch("main"),
//	    release.WithSelector(selector.NewTerminal()),
//	    release.WithPublisher(hosting.NewGHCLI(sh, hosting.Options{})),
//	)
//	res, err := o.Run(ctx)
package release
