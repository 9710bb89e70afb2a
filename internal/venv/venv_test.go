package venv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mkVenv creates a minimal venv layout under dir and returns the venv path.
func mkVenv(t *testing.T, dir string) string {
	t.Helper()
	venvPath := filepath.Join(dir, DirName)
	if err := os.MkdirAll(filepath.Join(venvPath, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(venvPath, "bin", "activate"), []byte("# activate"), 0o644); err != nil {
		t.Fatal(err)
	}
	return venvPath
}

func TestDetect_NoVenv(t *testing.T) {
	dir := t.TempDir()
	st := Detect(dir, "")
	if st.Exists || st.Active {
		t.Errorf("expected exists=false active=false, got %+v", st)
	}
	if st.Path != filepath.Join(dir, DirName) {
		t.Errorf("path should still be reported, got %q", st.Path)
	}
}

func TestDetect_DirWithoutActivateScript(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0o755); err != nil {
		t.Fatal(err)
	}
	st := Detect(dir, "")
	if st.Exists {
		t.Error("venv without bin/activate must not count as existing")
	}
}

func TestDetect_Exists(t *testing.T) {
	dir := t.TempDir()
	mkVenv(t, dir)
	st := Detect(dir, "")
	if !st.Exists {
		t.Fatal("expected exists=true")
	}
	if st.Active {
		t.Error("no active environment was injected, active must be false")
	}
}

func TestDetect_Active(t *testing.T) {
	dir := t.TempDir()
	venvPath := mkVenv(t, dir)
	abs, err := filepath.Abs(venvPath)
	if err != nil {
		t.Fatal(err)
	}

	st := Detect(dir, abs)
	if !st.Active {
		t.Error("expected active=true when the active env equals the venv path")
	}

	st = Detect(dir, "/somewhere/else/venv")
	if st.Active {
		t.Error("expected active=false for an unrelated active env")
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	venvPath := mkVenv(t, dir)

	if err := Delete(dir); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(venvPath); !os.IsNotExist(err) {
		t.Error("venv directory should be gone")
	}

	// Deleting again reports absence.
	if err := Delete(dir); err == nil {
		t.Error("expected error when no venv exists")
	}
}

func TestActivateCommand(t *testing.T) {
	dir := t.TempDir()
	mkVenv(t, dir)

	cmd, err := ActivateCommand(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cmd, "activate") {
		t.Errorf("unexpected activation command %q", cmd)
	}

	if _, err := ActivateCommand(t.TempDir()); err == nil {
		t.Error("expected error for missing venv")
	}
}

func TestCreate_InvalidPath(t *testing.T) {
	if err := Create(context.Background(), nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for a non-existent project path")
	}
}
