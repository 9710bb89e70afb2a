package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"pydash/internal/scanner"
	"pydash/internal/snapshot"
)

// handleData implements GET /api/data: the persisted document with the
// projects key replaced by a fresh scan. Favorite flags survive the refresh.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := snapshot.Load(s.cfg.DataFile)
	data.Projects = s.scan(r.Context(), data.Projects)

	if err := snapshot.Save(s.cfg.DataFile, data); err != nil {
		s.log.Warnf("persisting data file: %v", err)
	}
	s.writeJSON(w, http.StatusOK, data)
}

// handleScanProjects implements GET /api/scan-projects: runs a scan, persists
// the result, records it in history, notifies websocket clients, and returns
// the project list.
func (s *Server) handleScanProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	data := snapshot.Load(s.cfg.DataFile)
	data.Projects = s.scan(r.Context(), data.Projects)
	elapsed := time.Since(start)

	if err := snapshot.Save(s.cfg.DataFile, data); err != nil {
		s.log.Warnf("persisting data file: %v", err)
	}

	if s.db != nil {
		if _, err := s.db.RecordScan(s.cfg.ProjectsDir, elapsed, data.Projects); err != nil {
			s.log.Warnf("recording scan history: %v", err)
		}
	}

	s.hub.send(Event{
		Type:    "projects-updated",
		Message: fmt.Sprintf("%d project(s) found", len(data.Projects)),
		Count:   len(data.Projects),
		Time:    time.Now(),
	})

	s.writeJSON(w, http.StatusOK, data.Projects)
}

// scan runs the scanner and carries Favorite flags over from the previous
// project list, matching by path.
func (s *Server) scan(ctx context.Context, previous []scanner.Project) []scanner.Project {
	start := time.Now()
	projects := s.scanner.Scan(ctx, s.cfg.ProjectsDir)
	observeScan(time.Since(start), len(projects))

	favorites := make(map[string]bool, len(previous))
	for _, p := range previous {
		if p.Favorite {
			favorites[p.Path] = true
		}
	}
	for i := range projects {
		if favorites[projects[i].Path] {
			projects[i].Favorite = true
		}
	}
	return projects
}

type openProjectRequest struct {
	Path string `json:"path"`
}

// handleOpenProject implements POST /api/open-project: opens the project in
// an editor, trying VS Code first and falling back to the platform opener.
func (s *Server) handleOpenProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req openProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if _, err := os.Stat(req.Path); err != nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("project path: %w", err))
		return
	}

	for _, opener := range openers() {
		res := s.runner.Run(r.Context(), req.Path, opener[0], opener[1:]...)
		if res.Succeeded {
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		s.log.Debugf("opener %s failed: %s", opener[0], res.Stderr)
	}
	s.writeError(w, http.StatusInternalServerError, errors.New("no editor available"))
}

// openers returns the editor commands to try, in order. The project path is
// passed as the working directory, so "." targets it.
func openers() [][]string {
	cmds := [][]string{{"code", "."}}
	if runtime.GOOS == "darwin" {
		cmds = append(cmds, []string{"open", "."})
	} else {
		cmds = append(cmds, []string{"xdg-open", "."})
	}
	return cmds
}

// handleSaveData implements POST /api/save-data: replaces the persisted
// document wholesale.
func (s *Server) handleSaveData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var data snapshot.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := snapshot.Save(s.cfg.DataFile, data); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("saving data: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleHistory implements GET /api/history. Without parameters it returns
// recent scans; with ?scan_id it returns the projects of one scan.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("scan history is not enabled"))
		return
	}

	if idParam := r.URL.Query().Get("scan_id"); idParam != "" {
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid scan_id: %w", err))
			return
		}
		projects, err := s.db.ProjectsForScan(id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, projects)
		return
	}

	limit := 20
	if lp := r.URL.Query().Get("limit"); lp != "" {
		if n, err := strconv.Atoi(lp); err == nil && n > 0 {
			limit = n
		}
	}
	scans, err := s.db.RecentScans(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scans)
}
