package git

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Credentials is a GitHub credential set discovered in a project's .env file.
type Credentials struct {
	Token      string
	Username   string
	GitEmail   string
	GitName    string
	SourceFile string
}

// credSkipDirs are never descended into while searching for .env files.
var credSkipDirs = map[string]bool{
	".git":         true,
	"venv":         true,
	".venv":        true,
	"node_modules": true,
	"__pycache__":  true,
}

// FindFallbackCredentials walks the projects tree looking for .env files that
// carry a working GITHUB_TOKEN/GITHUB_USERNAME pair. Each candidate token is
// validated against the API before being accepted; the first working set wins.
// Returns nil when nothing usable is found.
func FindFallbackCredentials(ctx context.Context, client *http.Client, apiBase, projectsDir string) *Credentials {
	if client == nil {
		client = http.DefaultClient
	}
	log := logrus.WithField("component", "git")

	var found *Credentials
	err := filepath.WalkDir(projectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if credSkipDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != ".env" {
			return nil
		}

		vars, err := godotenv.Read(path)
		if err != nil {
			log.Debugf("unreadable .env at %s: %v", path, err)
			return nil
		}
		token, user := vars["GITHUB_TOKEN"], vars["GITHUB_USERNAME"]
		if token == "" || user == "" {
			return nil
		}
		if !testToken(ctx, client, apiBase, token) {
			log.Debugf("stale GitHub token in %s", path)
			return nil
		}

		found = &Credentials{
			Token:      token,
			Username:   user,
			GitEmail:   vars["GIT_EMAIL"],
			GitName:    vars["GIT_NAME"],
			SourceFile: path,
		}
		return filepath.SkipAll
	})
	if err != nil {
		log.Debugf("credential search aborted: %v", err)
	}
	return found
}

// testToken checks a token against GET /user; a response carrying a login
// field means the token works.
func testToken(ctx context.Context, client *http.Client, apiBase, token string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/user", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "token "+token)

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false
	}
	return decoded.Login != ""
}
