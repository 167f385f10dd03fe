package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner starts external programs. The encoder only talks to the outside
// world through it, so tests can substitute a fake.
type Runner interface {
	// LookPath resolves name to an executable.
	LookPath(name string) (string, error)
	// Run executes name with args and waits for it. A non-zero exit is an
	// error that includes the program's stderr.
	Run(ctx context.Context, name string, args []string) error
}

// ExecRunner runs programs with os/exec. Arguments are passed as a list,
// never through a shell.
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (ExecRunner) Run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		return &RunError{Name: name, Err: err, Stderr: tail(stderr.String(), 20)}
	}
	return nil
}

// RunError is a failed program run.
type RunError struct {
	Name   string
	Err    error
	Stderr string
}

func (e *RunError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s failed: %v (stderr: %s)", e.Name, e.Err, e.Stderr)
}

func (e *RunError) Unwrap() error { return e.Err }

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
