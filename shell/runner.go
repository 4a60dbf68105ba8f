package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// DefaultInterpreter is the shell used by ExecRunner.
const DefaultInterpreter = "bash"

// Result describes how a command ended.
type Result struct {
	// ExitCode is the process exit status, or -1 when the process was
	// terminated by a signal.
	ExitCode int
	// Signal names the terminating signal; empty for a normal exit.
	Signal string
	Stdout string
	Stderr string
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Signal == ""
}

// Runner spawns shell commands. Implementations never interpret the exit
// code; they only return an error when the process could not be started.
type Runner interface {
	// Exec runs command with captured stdout and stderr.
	Exec(ctx context.Context, dir, command string) (*Result, error)

	// ExecInteractive runs command attached to the caller's terminal.
	// Stdout and Stderr of the returned Result are empty.
	ExecInteractive(ctx context.Context, dir, command string) (*Result, error)
}

// ExecRunner runs commands through a real shell interpreter.
type ExecRunner struct {
	// Interpreter is invoked as `<Interpreter> -c <command>`.
	// Defaults to DefaultInterpreter.
	Interpreter string
}

// NewExecRunner creates a runner that uses bash.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Interpreter: DefaultInterpreter}
}

func (r *ExecRunner) interpreter() string {
	if r.Interpreter == "" {
		return DefaultInterpreter
	}
	return r.Interpreter
}

// Exec implements Runner.
func (r *ExecRunner) Exec(ctx context.Context, dir, command string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.interpreter(), "-c", command)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	state, err := r.run(cmd, command)
	if err != nil {
		return nil, err
	}
	state.Stdout = stdout.String()
	state.Stderr = stderr.String()
	return state, nil
}

// ExecInteractive implements Runner.
func (r *ExecRunner) ExecInteractive(ctx context.Context, dir, command string) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.interpreter(), "-c", command)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return r.run(cmd, command)
}

func (r *ExecRunner) run(cmd *exec.Cmd, command string) (*Result, error) {
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &SpawnError{Command: command, Err: err}
		}
	}

	state := cmd.ProcessState
	if state == nil {
		return nil, &SpawnError{Command: command, Err: errors.New("process did not start")}
	}

	result := &Result{ExitCode: state.ExitCode()}
	if result.ExitCode == -1 {
		// ProcessState.String reports "signal: <name>" for signaled processes.
		result.Signal = strings.TrimPrefix(state.String(), "signal: ")
	}
	return result, nil
}
