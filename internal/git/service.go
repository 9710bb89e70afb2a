package git

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"pydash/internal/runner"
)

// DefaultCommitMessage is used when a commit request carries no message.
const DefaultCommitMessage = "Auto commit from pydash"

// Service performs git operations on project directories. The zero value is
// not usable; construct with NewService.
type Service struct {
	runner runner.Runner

	// Identity written into a repository's local config on init.
	UserName  string
	UserEmail string

	// GitHub credentials for remote creation.
	GitHubUser  string
	GitHubToken string

	// APIBase is the GitHub API root; overridable in tests.
	APIBase string

	httpClient *http.Client
	log        *logrus.Entry
}

// NewService builds a Service around the given command runner.
func NewService(r runner.Runner) *Service {
	return &Service{
		runner:     r,
		APIBase:    "https://api.github.com",
		httpClient: http.DefaultClient,
		log:        logrus.WithField("component", "git"),
	}
}

// Init initializes a repository and writes the configured identity into its
// local config. Identity failures are logged, not fatal: the repository is
// already usable.
func (s *Service) Init(ctx context.Context, projectPath string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	res := s.runner.Run(ctx, projectPath, "git", "init")
	if !res.Succeeded {
		return fmt.Errorf("git init: %s", res.Stderr)
	}
	if s.UserEmail != "" {
		if r := s.runner.Run(ctx, projectPath, "git", "config", "user.email", s.UserEmail); !r.Succeeded {
			s.log.Warnf("setting user.email: %s", r.Stderr)
		}
	}
	if s.UserName != "" {
		if r := s.runner.Run(ctx, projectPath, "git", "config", "user.name", s.UserName); !r.Succeeded {
			s.log.Warnf("setting user.name: %s", r.Stderr)
		}
	}
	return nil
}

// Add stages all files in the project.
func (s *Service) Add(ctx context.Context, projectPath string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	res := s.runner.Run(ctx, projectPath, "git", "add", ".")
	if !res.Succeeded {
		return fmt.Errorf("git add: %s", res.Stderr)
	}
	return nil
}

// Commit records staged changes with the given message (or the default).
func (s *Service) Commit(ctx context.Context, projectPath, message string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	if message == "" {
		message = DefaultCommitMessage
	}
	res := s.runner.Run(ctx, projectPath, "git", "commit", "-m", message)
	if !res.Succeeded {
		return fmt.Errorf("git commit: %s", res.Stderr)
	}
	return nil
}

// Push publishes local commits to the configured remote.
func (s *Service) Push(ctx context.Context, projectPath string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	res := s.runner.Run(ctx, projectPath, "git", "push")
	if !res.Succeeded {
		return fmt.Errorf("git push: %s", res.Stderr)
	}
	return nil
}

// Pull fetches and integrates changes from the configured remote.
func (s *Service) Pull(ctx context.Context, projectPath string) error {
	if err := checkPath(projectPath); err != nil {
		return err
	}
	res := s.runner.Run(ctx, projectPath, "git", "pull")
	if !res.Succeeded {
		return fmt.Errorf("git pull: %s", res.Stderr)
	}
	return nil
}

// ShortStatus returns the `git status --short` output, or "Working tree
// clean" when there is none.
func (s *Service) ShortStatus(ctx context.Context, projectPath string) (string, error) {
	if err := checkPath(projectPath); err != nil {
		return "", err
	}
	res := s.runner.Run(ctx, projectPath, "git", "status", "--short")
	if !res.Succeeded {
		return "", fmt.Errorf("git status: %s", res.Stderr)
	}
	if res.Stdout == "" {
		return "Working tree clean", nil
	}
	return res.Stdout, nil
}

// RemoteInfo describes a repository's remotes for display.
type RemoteInfo struct {
	Remotes        string `json:"remotes"`
	RemoteBranches string `json:"remote_branches"`
}

// Remotes lists the configured remotes and remote branches.
func (s *Service) Remotes(ctx context.Context, projectPath string) (RemoteInfo, error) {
	if err := checkPath(projectPath); err != nil {
		return RemoteInfo{}, err
	}
	var info RemoteInfo
	if res := s.runner.Run(ctx, projectPath, "git", "remote", "-v"); res.Succeeded {
		info.Remotes = res.Stdout
	}
	if res := s.runner.Run(ctx, projectPath, "git", "branch", "-r"); res.Succeeded {
		info.RemoteBranches = res.Stdout
	}
	if info.Remotes == "" {
		info.Remotes = "(none)"
	}
	return info, nil
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
