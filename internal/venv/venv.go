// Package venv detects and manages per-project Python virtual environments.
// The convention is a `venv/` directory at the project root with the standard
// `bin/activate` entry point.
package venv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pydash/internal/runner"
)

// DirName is the conventional virtual-environment directory name.
const DirName = "venv"

// Status describes a project's virtual environment.
type Status struct {
	// Exists is true when both the venv directory and its activation
	// script are present.
	Exists bool `json:"exists"`

	// Active is true when the running process's own active environment
	// contains this project's venv path. It cannot observe activation in
	// other processes.
	Active bool `json:"active"`

	// Path is the venv directory path, set whether or not it exists.
	Path string `json:"path,omitempty"`
}

// Detect reports the environment status for a project directory. activeEnv is
// the caller-supplied active-environment path (normally $VIRTUAL_ENV of the
// hosting process); pass "" when no environment is active.
//
// Detect is pure apart from two stat calls and never returns an error:
// structural absence is data, not a failure.
func Detect(projectPath, activeEnv string) Status {
	venvPath := filepath.Join(projectPath, DirName)
	st := Status{Path: venvPath}

	info, err := os.Stat(venvPath)
	if err != nil || !info.IsDir() {
		return st
	}
	if _, err := os.Stat(filepath.Join(venvPath, "bin", "activate")); err != nil {
		return st
	}
	st.Exists = true

	if activeEnv != "" {
		abs, err := filepath.Abs(venvPath)
		if err != nil {
			abs = venvPath
		}
		if strings.Contains(activeEnv, abs) {
			st.Active = true
		}
	}
	return st
}

// Create builds a fresh virtual environment inside the project directory.
func Create(ctx context.Context, r runner.Runner, projectPath string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	res := r.Run(ctx, projectPath, "python3", "-m", "venv", DirName)
	if !res.Succeeded {
		return fmt.Errorf("creating venv: %s", res.Stderr)
	}
	return nil
}

// Delete removes the project's virtual environment tree.
func Delete(projectPath string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	venvPath := filepath.Join(projectPath, DirName)
	if _, err := os.Stat(venvPath); err != nil {
		return fmt.Errorf("virtual environment not found")
	}
	if err := os.RemoveAll(venvPath); err != nil {
		return fmt.Errorf("deleting venv: %w", err)
	}
	return nil
}

// ActivateCommand returns the shell line that activates the project's venv.
// Opening a terminal to run it is the caller's platform-specific concern.
func ActivateCommand(projectPath string) (string, error) {
	script := filepath.Join(projectPath, DirName, "bin", "activate")
	if _, err := os.Stat(script); err != nil {
		return "", fmt.Errorf("virtual environment not found")
	}
	return fmt.Sprintf("cd %q && source %q", projectPath, script), nil
}

func checkPath(projectPath string) error {
	if projectPath == "" {
		return fmt.Errorf("invalid project path")
	}
	if _, err := os.Stat(projectPath); err != nil {
		return fmt.Errorf("invalid project path")
	}
	return nil
}
