// Package shell runs shell commands in a working directory and captures
// how they ended.
//
// Core types:
//   - Shell: binds a directory and a Runner, applies the failure policy
//   - Runner: spawns a command and returns its Result (ExecRunner, MockRunner)
//   - NonZeroExitError: a command exited with a status other than 0
//   - SpawnError: the shell itself could not be started
//
// Example usage:
//
//	sh := shell.New("/path/to/project")
//	branch, err := sh.Stdout(ctx, "git rev-parse --abbrev-ref HEAD")
//
//	// Tolerate a non-zero exit and inspect the record instead
//	res, err := sh.Run(ctx, "git commit -m v1.2.3", shell.AllowFailure())
package shell
