package app

import (
	"testing"

	"pydash/internal/git"
	"pydash/internal/output"
	"pydash/internal/scanner"
	"pydash/internal/venv"
)

func TestVenvCell(t *testing.T) {
	output.SetNoColor(true)
	defer output.SetNoColor(false)

	tests := []struct {
		name string
		venv venv.Status
		want string
	}{
		{"none", venv.Status{}, "-"},
		{"exists", venv.Status{Exists: true}, "yes"},
		{"active", venv.Status{Exists: true, Active: true}, "active"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := venvCell(scanner.Project{Venv: tc.venv})
			if got != tc.want {
				t.Errorf("venvCell() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGitCell(t *testing.T) {
	output.SetNoColor(true)
	defer output.SetNoColor(false)

	tests := []struct {
		name string
		git  git.Status
		want string
	}{
		{"no git", git.Status{}, "-"},
		{
			"clean",
			git.Status{HasGit: true, Branch: "main", HasRemote: true, HasCommits: true},
			"main",
		},
		{
			"dirty",
			git.Status{HasGit: true, Branch: "main", HasRemote: true, HasCommits: true, HasChanges: true},
			"main *",
		},
		{
			"needs fix",
			git.Status{HasGit: true, Branch: "main", NeedsFix: true, FixReason: git.FixReasonNoCommits},
			"main (no commits)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := gitCell(scanner.Project{Git: tc.git})
			if got != tc.want {
				t.Errorf("gitCell() = %q, want %q", got, tc.want)
			}
		})
	}
}
