// Package git reads release history from a git repository and performs the
// working-tree operations of a release, all through shell.Shell.
//
// Core types:
//   - Repo: git operations bound to one repository directory
//   - Commit: one entry of the log (sha, subject, tag decoration)
//   - ReleaseTag: a commit tagged vMAJOR.MINOR.PATCH
//
// Example usage:
//
//	repo := git.NewRepo(shell.New("/path/to/repo"))
//	last, err := repo.LastReleaseTag(ctx)
//	tip, err := repo.CurrentRemoteCommit(ctx)
//	commits, err := repo.CommitsBetween(ctx, last.SHA, tip.SHA)
package git
