package git

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// createRepoRequest is the GitHub "create repository for the authenticated
// user" payload.
type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

type createRepoResponse struct {
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	Message  string `json:"message"`
	Errors   []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CreateGitHubRepo creates a public GitHub repository for the project, wires
// it up as the `origin` remote with embedded credentials, and renames the
// current branch to main. It returns the repository's HTML URL.
func (s *Service) CreateGitHubRepo(ctx context.Context, projectPath, name, description string) (string, error) {
	if err := checkPath(projectPath); err != nil {
		return "", err
	}
	if s.GitHubToken == "" {
		return "", fmt.Errorf("GitHub token not configured; set GITHUB_TOKEN")
	}
	if name == "" {
		name = filepath.Base(projectPath)
	}
	if description == "" {
		description = fmt.Sprintf("Python project: %s", name)
	}

	body, err := json.Marshal(createRepoRequest{Name: name, Description: description})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIBase+"/user/repos", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.GitHubToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling GitHub API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded createRepoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("parsing GitHub response: %w", err)
	}

	if decoded.HTMLURL == "" {
		if len(decoded.Errors) > 0 {
			return "", fmt.Errorf("GitHub API error: %s", decoded.Errors[0].Message)
		}
		if decoded.Message != "" {
			return "", fmt.Errorf("GitHub API error: %s", decoded.Message)
		}
		return "", fmt.Errorf("unexpected response from GitHub API")
	}

	remoteURL := decoded.CloneURL
	if s.GitHubUser != "" {
		remoteURL = strings.Replace(remoteURL, "https://",
			fmt.Sprintf("https://%s:%s@", s.GitHubUser, s.GitHubToken), 1)
	}

	if res := s.runner.Run(ctx, projectPath, "git", "remote", "add", "origin", remoteURL); !res.Succeeded {
		return "", fmt.Errorf("repository created but failed to add remote: %s", res.Stderr)
	}
	if res := s.runner.Run(ctx, projectPath, "git", "branch", "-M", "main"); !res.Succeeded {
		s.log.Warnf("renaming branch to main: %s", res.Stderr)
	}

	s.log.Infof("created GitHub repository %s", decoded.HTMLURL)
	return decoded.HTMLURL, nil
}
