package git

import "errors"

// Git operation errors.
var (
	// ErrEmptyHistory indicates the repository has no commits.
	ErrEmptyHistory = errors.New("repository has no commits")

	// ErrGitDirty indicates the working directory has uncommitted changes.
	ErrGitDirty = errors.New("please commit all changes before releasing")

	// ErrMalformedLog indicates git log produced a record that could not be parsed.
	ErrMalformedLog = errors.New("malformed git log record")
)

// Error wraps a git command error with context.
type Error struct {
	Op  string // Operation that failed (e.g., "commit", "push")
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DirtyError carries the porcelain status of a dirty working tree. It
// matches ErrGitDirty.
type DirtyError struct {
	Status string
}

func (e *DirtyError) Error() string {
	return ErrGitDirty.Error()
}

func (e *DirtyError) Is(target error) bool {
	return target == ErrGitDirty
}
