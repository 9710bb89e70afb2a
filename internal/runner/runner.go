// Package runner provides the shell-command capability used by the git and
// venv services. Commands are executed with an argument vector (never through
// a shell) and are bounded by a per-command timeout.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single command when the Runner has no explicit timeout.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of one command invocation. A Result is always
// produced; execution failures (missing binary, timeout, non-zero exit) are
// reported through Succeeded and Stderr rather than an error.
type Result struct {
	Succeeded bool
	Stdout    string
	Stderr    string
	ExitCode  int
}

// Runner executes external commands in a working directory.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) Result
}

// Exec is the os/exec-backed Runner.
type Exec struct {
	// Timeout bounds each command; zero means DefaultTimeout.
	Timeout time.Duration
}

// Run executes name with args in dir and captures trimmed stdout/stderr.
func (e Exec) Run(ctx context.Context, dir string, name string, args ...string) Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Succeeded: err == nil,
		Stdout:    strings.TrimSpace(stdout.String()),
		Stderr:    strings.TrimSpace(stderr.String()),
	}

	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.Stderr = "command timed out"
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Command never started (e.g. binary not found).
			res.ExitCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}
	return res
}
