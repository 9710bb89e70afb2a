package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pydash/internal/venv"
)

// actionRequest is the shared body for venv and git actions. Only Path is
// required; the other fields apply to specific actions.
type actionRequest struct {
	Path        string `json:"path"`
	Message     string `json:"message,omitempty"`     // git commit
	Name        string `json:"name,omitempty"`        // github repo name
	Description string `json:"description,omitempty"` // github repo description
}

// decodeAction parses the request body and enforces POST with a path.
func (s *Server) decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {
	var req actionRequest
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return req, false
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return req, false
	}
	return req, true
}

// handleVenvAction implements POST /api/venv/{create|delete|activate}.
func (s *Server) handleVenvAction(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/venv/")
	req, ok := s.decodeAction(w, r)
	if !ok {
		return
	}

	switch action {
	case "create":
		if err := venv.Create(r.Context(), s.runner, req.Path); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case "delete":
		if err := venv.Delete(req.Path); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case "activate":
		cmd, err := venv.ActivateCommand(req.Path)
		if err != nil {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"command": cmd})
	default:
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown venv action %q", action))
	}
}

// handleGitAction implements POST /api/git/{action} for init, add, commit,
// status, push, pull, create-github, and remote-info.
func (s *Server) handleGitAction(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/git/")
	req, ok := s.decodeAction(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch action {
	case "init":
		s.respondGit(w, s.git.Init(ctx, req.Path))
	case "add":
		s.respondGit(w, s.git.Add(ctx, req.Path))
	case "commit":
		s.respondGit(w, s.git.Commit(ctx, req.Path, req.Message))
	case "push":
		s.respondGit(w, s.git.Push(ctx, req.Path))
	case "pull":
		s.respondGit(w, s.git.Pull(ctx, req.Path))
	case "status":
		status, err := s.git.ShortStatus(ctx, req.Path)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
	case "remote-info":
		info, err := s.git.Remotes(ctx, req.Path)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, info)
	case "create-github":
		url, err := s.git.CreateGitHubRepo(ctx, req.Path, req.Name, req.Description)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
	default:
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown git action %q", action))
	}
}

// respondGit translates an error-only git operation into a JSON response.
func (s *Server) respondGit(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
