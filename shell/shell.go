package shell

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Shell runs commands in one working directory.
type Shell struct {
	dir    string
	runner Runner
	logger *slog.Logger
}

// Option configures Shell.
type Option func(*Shell)

// WithRunner sets a custom runner.
// This is primarily used for testing to inject MockRunner.
func WithRunner(runner Runner) Option {
	return func(s *Shell) {
		s.runner = runner
	}
}

// WithLogger sets the logger used to trace command execution.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// New creates a Shell for dir. Relative directories are resolved against
// the process working directory.
func New(dir string, opts ...Option) *Shell {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	s := &Shell{
		dir:    dir,
		runner: NewExecRunner(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the working directory commands run in.
func (s *Shell) Dir() string {
	return s.dir
}

type runConfig struct {
	allowFailure bool
}

// RunOption adjusts the failure policy of a single call.
type RunOption func(*runConfig)

// AllowFailure makes a non-zero exit a normal result instead of an error.
func AllowFailure() RunOption {
	return func(c *runConfig) {
		c.allowFailure = true
	}
}

// Run executes command and returns its record.
// A non-zero exit fails with *NonZeroExitError unless AllowFailure is given.
func (s *Shell) Run(ctx context.Context, command string, opts ...RunOption) (*Result, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	result, err := s.runner.Exec(ctx, s.dir, command)
	if err != nil {
		s.logger.Debug("command failed to start", "cmd", command, "dir", s.dir, "error", err)
		return nil, err
	}
	s.logger.Debug("command finished",
		"cmd", command,
		"dir", s.dir,
		"exit_code", result.ExitCode,
		"signal", result.Signal,
		"duration", time.Since(start),
	)

	if ctxErr := ctx.Err(); ctxErr != nil && !result.Success() {
		return result, fmt.Errorf("run %q: %w", command, ctxErr)
	}
	if !cfg.allowFailure && !result.Success() {
		return result, &NonZeroExitError{Command: command, Result: *result}
	}
	return result, nil
}

// Stdout runs command and returns its trimmed standard output.
func (s *Shell) Stdout(ctx context.Context, command string, opts ...RunOption) (string, error) {
	result, err := s.Run(ctx, command, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Stderr runs command and returns its trimmed standard error.
func (s *Shell) Stderr(ctx context.Context, command string, opts ...RunOption) (string, error) {
	result, err := s.Run(ctx, command, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stderr), nil
}

// OK reports whether command exits with status 0.
// Only a failure to start the command is returned as an error.
func (s *Shell) OK(ctx context.Context, command string) (bool, error) {
	result, err := s.Run(ctx, command, AllowFailure())
	if err != nil {
		return false, err
	}
	return result.ExitCode == 0, nil
}

// RunInteractive executes command attached to the caller's terminal, so the
// command can prompt the user (for example for a one-time password).
func (s *Shell) RunInteractive(ctx context.Context, command string) error {
	s.logger.Debug("running interactive command", "cmd", command, "dir", s.dir)
	result, err := s.runner.ExecInteractive(ctx, s.dir, command)
	if err != nil {
		return err
	}
	if !result.Success() {
		return &NonZeroExitError{Command: command, Result: *result}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
