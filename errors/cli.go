package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Fatal creates a fatal input error with the given message. The cause, if
// any, stays reachable through errors.Is and errors.As.
func Fatal(cause error, format string, args ...any) *CLIError {
	err := ErrFatalInput
	if cause != nil {
		err = errors.Join(ErrFatalInput, cause)
	}
	return &CLIError{
		Err:     err,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithSuggestion returns a copy of e carrying the suggestion.
func (e *CLIError) WithSuggestion(s string) *CLIError {
	cp := *e
	cp.Suggestion = s
	return &cp
}

// NewWrongBranchError reports a release attempted from the wrong branch.
func NewWrongBranchError(current, want string) *CLIError {
	return Fatal(nil, "current branch is %q but should be %q", current, want).
		WithSuggestion(fmt.Sprintf("Run 'git checkout %s' or pass --branch %s.", want, current))
}

// NewDirtyTreeError reports uncommitted changes in the working tree.
func NewDirtyTreeError(status string) *CLIError {
	e := Fatal(nil, "please commit all changes before releasing").
		WithSuggestion("Commit or stash your changes, then run the release again.")
	e.Details = strings.TrimRight(status, "\n")
	return e
}

// NewMissingTokenError reports that no API token is available for service.
func NewMissingTokenError(service string, envVars ...string) *CLIError {
	return &CLIError{
		Err:     ErrNotAuthenticated,
		Message: fmt.Sprintf("No %s API token found.", service),
		Suggestion: fmt.Sprintf("Set one of %s, or use --backend gh to publish through the gh CLI.",
			strings.Join(envVars, ", ")),
	}
}

// NewNotInGitRepoError creates an error for commands that require a git repository.
func NewNotInGitRepoError(dir string) error {
	return &CLIError{
		Err:        ErrNotInGitRepo,
		Message:    fmt.Sprintf("%s is not inside a git repository.", dir),
		Suggestion: "Run vrt from the package directory of a git checkout.",
	}
}

// WrapAuthError turns a rejected credential or missing permission into
// guidance for service. Other errors are returned unchanged. The original
// error text is kept in Details.
func WrapAuthError(err error, service string) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case IsAuthError(err):
		return &CLIError{
			Err:        errors.Join(ErrNotAuthenticated, err),
			Message:    fmt.Sprintf("%s rejected the credentials.", service),
			Details:    err.Error(),
			Suggestion: "Check the token in GITHUB_TOKEN / GITLAB_TOKEN, or run 'gh auth login'.",
		}
	case IsPermissionError(err):
		return &CLIError{
			Err:        errors.Join(ErrPermissionDenied, err),
			Message:    fmt.Sprintf("You don't have permission to publish releases on %s.", service),
			Details:    err.Error(),
			Suggestion: "Make sure the token has write access to the repository.",
		}
	}
	return err
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
// The original error text is kept in Details.
func WrapConnectionError(err error, serverURL string) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		return &CLIError{
			Err:        errors.Join(ErrConnectionFailed, err),
			Message:    fmt.Sprintf("Cannot connect to %s", serverURL),
			Details:    err.Error(),
			Suggestion: "Check that:\n  - The URL is correct\n  - Your network connection is working",
		}
	}

	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		return &CLIError{
			Err:        errors.Join(ErrConnectionFailed, err),
			Message:    fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
			Details:    err.Error(),
			Suggestion: "Check that the server certificate is valid.",
		}
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return &CLIError{
			Err:        errors.Join(ErrConnectionFailed, err),
			Message:    fmt.Sprintf("Connection to %s timed out", serverURL),
			Details:    err.Error(),
			Suggestion: "The server may be overloaded or unreachable.\nTry again in a moment.",
		}
	}

	return err
}
