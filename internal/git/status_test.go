package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pydash/internal/runner"
)

// fakeRunner returns canned results keyed by the joined command line and
// records every invocation.
type fakeRunner struct {
	results map[string]runner.Result
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, dir string, name string, args ...string) runner.Result {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if res, ok := f.results[key]; ok {
		return res
	}
	return runner.Result{Succeeded: false, Stderr: "no canned result", ExitCode: 1}
}

func ok(stdout string) runner.Result {
	return runner.Result{Succeeded: true, Stdout: stdout}
}

// gitDir creates a temp project containing a .git directory.
func gitDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDetectStatus_NoGitMetadata(t *testing.T) {
	f := &fakeRunner{}
	st := DetectStatus(context.Background(), f, t.TempDir())
	if st.HasGit {
		t.Fatal("expected HasGit=false without .git directory")
	}
	if len(f.calls) != 0 {
		t.Errorf("no git commands should run without metadata, got %v", f.calls)
	}
}

func TestDetectStatus_FullStatus(t *testing.T) {
	dir := gitDir(t)
	f := &fakeRunner{results: map[string]runner.Result{
		"git branch --show-current":     ok("feature/x"),
		"git status --porcelain":        ok("M  staged.py\n M dirty.py"),
		"git remote -v":                 ok("origin https://example.com/r.git (fetch)"),
		"git log -1 --pretty=format:%h %s": ok("ab12cd3 initial commit"),
	}}

	st := DetectStatus(context.Background(), f, dir)
	if !st.HasGit {
		t.Fatal("expected HasGit=true")
	}
	if st.Branch != "feature/x" {
		t.Errorf("branch = %q", st.Branch)
	}
	if !st.HasStagedChanges || !st.HasUnstagedChanges || !st.HasChanges {
		t.Errorf("change flags wrong: %+v", st)
	}
	if !st.HasRemote || !st.HasCommits {
		t.Errorf("remote/commit flags wrong: %+v", st)
	}
	if st.NeedsFix {
		t.Errorf("healthy repo must not need fixing: %+v", st)
	}
	if st.LastCommit != "ab12cd3 initial commit" {
		t.Errorf("lastCommit = %q", st.LastCommit)
	}
}

func TestDetectStatus_QueryFailuresDegrade(t *testing.T) {
	dir := gitDir(t)
	f := &fakeRunner{} // every query fails

	st := DetectStatus(context.Background(), f, dir)
	if !st.HasGit {
		t.Fatal("metadata present, HasGit must be true")
	}
	if st.Branch != DefaultBranch {
		t.Errorf("failed branch query must default to %q, got %q", DefaultBranch, st.Branch)
	}
	if st.HasChanges || st.HasRemote || st.HasCommits {
		t.Errorf("failed queries must degrade to false: %+v", st)
	}
	if !st.NeedsFix || st.FixReason != FixReasonNoCommits {
		t.Errorf("expected needsFix with %q, got %+v", FixReasonNoCommits, st)
	}
}

func TestDetectStatus_NeedsFixPriority(t *testing.T) {
	// Zero commits AND no remote: "no commits" must win.
	dir := gitDir(t)
	f := &fakeRunner{results: map[string]runner.Result{
		"git branch --show-current":     ok(""),
		"git status --porcelain":        ok(""),
		"git remote -v":                 ok(""),
		"git log -1 --pretty=format:%h %s": {Succeeded: false, Stderr: "fatal: no commits", ExitCode: 128},
	}}

	st := DetectStatus(context.Background(), f, dir)
	if st.FixReason != FixReasonNoCommits {
		t.Errorf("fixReason = %q, want %q", st.FixReason, FixReasonNoCommits)
	}
}

func TestDetectStatus_NeedsFixNoRemote(t *testing.T) {
	dir := gitDir(t)
	f := &fakeRunner{results: map[string]runner.Result{
		"git branch --show-current":     ok("main"),
		"git status --porcelain":        ok(""),
		"git remote -v":                 ok(""),
		"git log -1 --pretty=format:%h %s": ok("ab12cd3 first"),
	}}

	st := DetectStatus(context.Background(), f, dir)
	if !st.NeedsFix || st.FixReason != FixReasonNoRemote {
		t.Errorf("expected %q, got %+v", FixReasonNoRemote, st)
	}
}

func TestParsePorcelain(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		staged   bool
		unstaged bool
	}{
		{"staged modify clean worktree", "M  file.py", true, false},
		{"worktree modify only", " M file.py", false, true},
		{"untracked", "?? new.py", false, true},
		{"staged add", "A  new.py", true, false},
		{"staged delete", "D  old.py", true, false},
		{"renamed", "R  a.py -> b.py", true, false},
		{"copied", "C  a.py -> b.py", true, false},
		{"worktree delete", " D gone.py", false, true},
		{"both columns", "MM file.py", true, true},
		{"clean", "", false, false},
		{"short line ignored", "M", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			staged, unstaged := parsePorcelain(tc.out)
			if staged != tc.staged || unstaged != tc.unstaged {
				t.Errorf("parsePorcelain(%q) = (%v, %v), want (%v, %v)",
					tc.out, staged, unstaged, tc.staged, tc.unstaged)
			}
		})
	}
}
