package shell

import (
	"errors"
	"fmt"
)

// ErrNoMockResponse is returned by MockRunner when a command has no scripted response
// and no fallback is configured.
var ErrNoMockResponse = errors.New("no mock response for command")

// NonZeroExitError is returned when a command exits with a status other than 0
// and the caller did not allow failure. It carries the complete record.
type NonZeroExitError struct {
	Command string
	Result  Result
}

func (e *NonZeroExitError) Error() string {
	if e.Result.Signal != "" {
		return fmt.Sprintf("%q terminated by signal %s", e.Command, e.Result.Signal)
	}
	msg := fmt.Sprintf("%q exited with code %d", e.Command, e.Result.ExitCode)
	if e.Result.Stderr != "" {
		msg += ": " + firstLine(e.Result.Stderr)
	}
	return msg
}

// SpawnError is returned when the shell process could not be started at all,
// for example because the interpreter is missing or not executable.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code carried by err, if err is a NonZeroExitError.
func ExitCode(err error) (int, bool) {
	var nz *NonZeroExitError
	if errors.As(err, &nz) {
		return nz.Result.ExitCode, true
	}
	return 0, false
}
