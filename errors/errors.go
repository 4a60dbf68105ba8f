package errors

import "errors"

// Common CLI errors with actionable guidance.
var (
	// ErrFatalInput indicates the package or repository state forbids a
	// release. Nothing has been mutated when it is returned.
	ErrFatalInput = errors.New("fatal input error")

	// ErrNotAuthenticated indicates a missing or rejected API token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotInGitRepo indicates the command requires a git repository.
	ErrNotInGitRepo = errors.New("not in a git repository")

	// ErrConnectionFailed indicates the server is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")
)
