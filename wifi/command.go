package wifi

import (
	"context"
	"errors"
	"os/exec"
	"slices"
)

// Runner executes an OS utility and returns its combined output. Adapters
// hold one as a field so tests can substitute canned output for real
// commands.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// Run is the default Runner. It captures combined stdout/stderr and wraps a
// non-zero exit in a *CommandError carrying the command text, exit code, and
// output verbatim.
func Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), &CommandError{
				Command:  cmd.String(),
				ExitCode: exitErr.ExitCode(),
				Output:   string(out),
			}
		}
		return string(out), err
	}
	return string(out), nil
}

// Tolerate treats the listed exit codes as success. Call sites use it to
// declare specifically documented benign codes (e.g. "already disconnected");
// everything else propagates unchanged.
func Tolerate(err error, codes ...int) error {
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && slices.Contains(codes, cmdErr.ExitCode) {
		return nil
	}
	return err
}

// ExitCode returns the exit code carried by err, or -1 if err is not a
// command failure.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

// CommandOutput returns the combined output carried by err, or "".
func CommandOutput(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Output
	}
	return ""
}

// RequireCommands verifies the given utilities are on PATH before any
// operational command runs. The hint should tell the user how to install
// them on this OS.
func RequireCommands(hint string, names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return &CommandNotFoundError{Command: name, InstallHint: hint}
		}
	}
	return nil
}
