// Package errors provides user-facing CLI errors for vrt.
//
// CLIError carries a message, optional details and an actionable
// suggestion. Errors that stop a release before anything was mutated wrap
// ErrFatalInput:
//
//	if branch != want {
//	    return errors.NewWrongBranchError(branch, want)
//	}
//
// Remote failures are decorated before they reach the user:
//
//	err = errors.WrapAuthError(err, "GitHub")
//	if errors.IsAuthError(err) {
//	    // token missing or rejected
//	}
package errors
