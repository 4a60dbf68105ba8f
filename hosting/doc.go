// Package hosting publishes release notes to the remote that hosts the
// repository.
//
// Core types:
//   - Publisher: looks up, creates and edits a release named after a tag
//   - GHCLI: drives the gh command line tool through a shell
//   - GitHubAPI: GitHub releases API using go-github
//   - GitLabAPI: GitLab releases API using go-gitlab
//
// Example usage:
//
//	pub := hosting.NewGHCLI(sh, hosting.Options{})
//	exists, err := pub.Exists(ctx, "v1.2.0")
//	if exists {
//	    err = pub.Edit(ctx, "v1.2.0", notes)
//	} else {
//	    err = pub.Create(ctx, "v1.2.0", notes)
//	}
package hosting
