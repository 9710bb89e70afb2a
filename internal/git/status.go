// Package git derives repository status for discovered projects and exposes
// the repository actions the dashboard offers (init, add, commit, push, pull,
// remote creation).
package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"pydash/internal/runner"
)

// DefaultBranch is reported when the branch query fails or yields nothing
// (e.g. a repository with no commits yet).
const DefaultBranch = "main"

// Reasons a repository is diagnosed as needing remediation, in priority order.
const (
	FixReasonNoCommits = "no commits"
	FixReasonNoRemote  = "no remote"
)

// Status describes a project's version-control state. HasGit discriminates:
// when false every other field is zero.
type Status struct {
	HasGit             bool   `json:"hasGit"`
	Branch             string `json:"branch,omitempty"`
	HasStagedChanges   bool   `json:"hasStagedChanges,omitempty"`
	HasUnstagedChanges bool   `json:"hasUnstagedChanges,omitempty"`
	HasChanges         bool   `json:"hasChanges,omitempty"`
	HasRemote          bool   `json:"hasRemote,omitempty"`
	HasCommits         bool   `json:"hasCommits,omitempty"`
	NeedsFix           bool   `json:"needsFix,omitempty"`
	FixReason          string `json:"fixReason,omitempty"`
	LastCommit         string `json:"lastCommit,omitempty"`
}

// DetectStatus issues the fixed set of read-only git queries for a project.
// Each query degrades independently to a conservative default on failure;
// DetectStatus itself never fails.
func DetectStatus(ctx context.Context, r runner.Runner, projectPath string) Status {
	if _, err := os.Stat(filepath.Join(projectPath, ".git")); err != nil {
		return Status{}
	}

	st := Status{HasGit: true, Branch: DefaultBranch}

	if res := r.Run(ctx, projectPath, "git", "branch", "--show-current"); res.Succeeded {
		if branch := strings.TrimSpace(res.Stdout); branch != "" {
			st.Branch = branch
		}
	}

	if res := r.Run(ctx, projectPath, "git", "status", "--porcelain"); res.Succeeded {
		st.HasStagedChanges, st.HasUnstagedChanges = parsePorcelain(res.Stdout)
	}
	st.HasChanges = st.HasStagedChanges || st.HasUnstagedChanges

	if res := r.Run(ctx, projectPath, "git", "remote", "-v"); res.Succeeded {
		st.HasRemote = strings.TrimSpace(res.Stdout) != ""
	}

	if res := r.Run(ctx, projectPath, "git", "log", "-1", "--pretty=format:%h %s"); res.Succeeded {
		st.LastCommit = strings.TrimSpace(res.Stdout)
		st.HasCommits = st.LastCommit != ""
	}

	// Missing commits takes priority: a repository with no history cannot
	// meaningfully have fixed its remote yet.
	switch {
	case !st.HasCommits:
		st.NeedsFix = true
		st.FixReason = FixReasonNoCommits
	case !st.HasRemote:
		st.NeedsFix = true
		st.FixReason = FixReasonNoRemote
	}

	return st
}

// parsePorcelain classifies `git status --porcelain` output. For each line of
// at least two characters, the first column is the index state and the second
// the worktree state. Untracked entries ("??") count as unstaged evidence.
func parsePorcelain(out string) (staged, unstaged bool) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		if strings.HasPrefix(line, "??") {
			unstaged = true
			continue
		}
		if strings.ContainsRune("AMDRC", rune(line[0])) {
			staged = true
		}
		if line[1] == 'M' || line[1] == 'D' {
			unstaged = true
		}
	}
	return staged, unstaged
}
