package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/vrt/shell"
)

// Repo runs git commands for one repository.
type Repo struct {
	sh *shell.Shell
}

// NewRepo creates a Repo operating in the shell's directory.
func NewRepo(sh *shell.Shell) *Repo {
	return &Repo{sh: sh}
}

// Dir returns the repository directory.
func (r *Repo) Dir() string {
	return r.sh.Dir()
}

// CurrentBranch returns the current branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := r.sh.Stdout(ctx, "git rev-parse --abbrev-ref HEAD")
	if err != nil {
		return "", &Error{Op: "get current branch", Err: err}
	}
	return branch, nil
}

// Status returns the working tree status in porcelain format.
func (r *Repo) Status(ctx context.Context) (string, error) {
	status, err := r.sh.Stdout(ctx, "git status --porcelain")
	if err != nil {
		return "", &Error{Op: "status", Err: err}
	}
	return status, nil
}

// RequireClean returns a *DirtyError when the working tree has changes.
// The shortest porcelain entry is three characters, so anything shorter
// is treated as noise.
func (r *Repo) RequireClean(ctx context.Context) error {
	status, err := r.Status(ctx)
	if err != nil {
		return err
	}
	if len(status) >= 3 {
		return &DirtyError{Status: status}
	}
	return nil
}

// PullWithTags pulls the current branch including tags.
func (r *Repo) PullWithTags(ctx context.Context) (*shell.Result, error) {
	res, err := r.sh.Run(ctx, "git pull -t")
	if err != nil {
		return res, &Error{Op: "pull", Err: err}
	}
	return res, nil
}

// StageAll stages every change in the working tree.
func (r *Repo) StageAll(ctx context.Context) (*shell.Result, error) {
	res, err := r.sh.Run(ctx, "git add .")
	if err != nil {
		return res, &Error{Op: "stage all", Err: err}
	}
	return res, nil
}

// Commit creates a commit with the given message. A non-zero exit (most
// commonly "nothing to commit") is not an error; inspect the result instead.
func (r *Repo) Commit(ctx context.Context, message string) (*shell.Result, error) {
	res, err := r.sh.Run(ctx, fmt.Sprintf("git commit -m %q", message), shell.AllowFailure())
	if err != nil {
		return res, &Error{Op: "commit", Err: err}
	}
	return res, nil
}

// ForceAnnotatedTag creates or moves an annotated tag to HEAD.
func (r *Repo) ForceAnnotatedTag(ctx context.Context, tag, message string) (*shell.Result, error) {
	res, err := r.sh.Run(ctx, fmt.Sprintf("git tag -f -a %q -m %q", tag, message))
	if err != nil {
		return res, &Error{Op: "tag", Err: err}
	}
	return res, nil
}

// PushFollowTags pushes the current branch and its annotated tags without
// running local hooks.
func (r *Repo) PushFollowTags(ctx context.Context) (*shell.Result, error) {
	res, err := r.sh.Run(ctx, "git push --no-verify --follow-tags")
	if err != nil {
		return res, &Error{Op: "push", Err: err}
	}
	return res, nil
}

// RemoteURL returns the URL of the specified remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := r.sh.Stdout(ctx, "git remote get-url "+remote)
	if err != nil {
		return "", &Error{Op: "get remote URL", Err: err}
	}
	return strings.TrimSpace(url), nil
}
