package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydash/internal/config"
	"pydash/internal/git"
	"pydash/internal/runner"
	"pydash/internal/scanner"
	"pydash/internal/snapshot"
	"pydash/internal/store"
)

// fakeRunner serves canned results keyed by the joined command line.
// Unknown commands fail.
type fakeRunner struct {
	results map[string]runner.Result
}

func (f fakeRunner) Run(_ context.Context, _ string, name string, args ...string) runner.Result {
	key := strings.Join(append([]string{name}, args...), " ")
	if res, ok := f.results[key]; ok {
		return res
	}
	return runner.Result{Stderr: "command failed", ExitCode: 1}
}

// newTestServer builds a Server over temp directories with an in-memory
// history store and a runner that fails every command unless told otherwise.
func newTestServer(t *testing.T, results map[string]runner.Result) (*Server, *config.Config) {
	t.Helper()

	projectsDir := t.TempDir()
	cfg := &config.Config{
		ProjectsDir: projectsDir,
		DataFile:    filepath.Join(t.TempDir(), "data.json"),
		Server:      config.Server{Host: "127.0.0.1", Port: 0},
		Scan:        config.Scan{MaxEntries: 50, WalkBudgetSec: 15, EntryBudgetSec: 3},
	}

	r := fakeRunner{results: results}
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(cfg, scanner.New(r, ""), git.NewService(r), r, db), cfg
}

// writeProject creates a directory with one Python file under the scan root.
func writeProject(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')\n"), 0o644))
	return dir
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
}

func TestIndex_UnknownPath(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestData_ReturnsSeededDocumentWithScan(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	writeProject(t, cfg.ProjectsDir, "webapp")

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/data")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var data snapshot.Data
	require.NoError(t, json.NewDecoder(res.Body).Decode(&data))

	require.Len(t, data.Projects, 1)
	assert.Equal(t, "webapp", data.Projects[0].Name)
	assert.NotEmpty(t, data.Snippets, "missing document should be seeded with default snippets")

	// The document must have been persisted.
	_, err = os.Stat(cfg.DataFile)
	assert.NoError(t, err)
}

func TestScanProjects_RecordsHistory(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	writeProject(t, cfg.ProjectsDir, "webapp")
	writeProject(t, cfg.ProjectsDir, "etl")

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/scan-projects")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var projects []scanner.Project
	require.NoError(t, json.NewDecoder(res.Body).Decode(&projects))
	assert.Len(t, projects, 2)

	histRes, err := http.Get(ts.URL + "/api/history")
	require.NoError(t, err)
	defer histRes.Body.Close()
	require.Equal(t, http.StatusOK, histRes.StatusCode)

	var scans []store.Scan
	require.NoError(t, json.NewDecoder(histRes.Body).Decode(&scans))
	require.Len(t, scans, 1)
	assert.Equal(t, 2, scans[0].ProjectCount)
	assert.Equal(t, cfg.ProjectsDir, scans[0].Root)
}

func TestScanProjects_PreservesFavorites(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	dir := writeProject(t, cfg.ProjectsDir, "webapp")

	data := snapshot.Default()
	data.Projects = []scanner.Project{{Name: "webapp", Path: dir, Favorite: true}}
	require.NoError(t, snapshot.Save(cfg.DataFile, data))

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/scan-projects")
	require.NoError(t, err)
	defer res.Body.Close()

	var projects []scanner.Project
	require.NoError(t, json.NewDecoder(res.Body).Decode(&projects))
	require.Len(t, projects, 1)
	assert.True(t, projects[0].Favorite, "favorite flag should survive a rescan")
}

func TestSaveData_Roundtrip(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	doc := snapshot.Data{
		Projects: []scanner.Project{},
		Snippets: []snapshot.Snippet{{ID: "s1", Title: "hello", Code: "print('hi')"}},
		Sessions: []snapshot.Session{},
	}
	body, err := json.Marshal(doc)
	require.NoError(t, err)

	res, err := http.Post(ts.URL+"/api/save-data", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	saved := snapshot.Load(cfg.DataFile)
	require.Len(t, saved.Snippets, 1)
	assert.Equal(t, "hello", saved.Snippets[0].Title)
}

func TestOpenProject_Validation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	// Missing path.
	res, err := http.Post(ts.URL+"/api/open-project", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Nonexistent path.
	res, err = http.Post(ts.URL+"/api/open-project", "application/json",
		strings.NewReader(`{"path":"/does/not/exist"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestOpenProject_UsesEditor(t *testing.T) {
	srv, cfg := newTestServer(t, map[string]runner.Result{
		"code .": {Succeeded: true},
	})
	dir := writeProject(t, cfg.ProjectsDir, "webapp")

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/open-project", "application/json",
		strings.NewReader(`{"path":"`+dir+`"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestVenvActivate(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	dir := writeProject(t, cfg.ProjectsDir, "webapp")
	venvBin := filepath.Join(dir, "venv", "bin")
	require.NoError(t, os.MkdirAll(venvBin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(venvBin, "activate"), []byte("# venv\n"), 0o644))

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/venv/activate", "application/json",
		strings.NewReader(`{"path":"`+dir+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Contains(t, out["command"], "bin/activate")
}

func TestVenvAction_Unknown(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	dir := writeProject(t, cfg.ProjectsDir, "webapp")

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/venv/frobnicate", "application/json",
		strings.NewReader(`{"path":"`+dir+`"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGitStatus(t *testing.T) {
	srv, cfg := newTestServer(t, map[string]runner.Result{
		"git status --short": {Succeeded: true, Stdout: ""},
	})
	dir := writeProject(t, cfg.ProjectsDir, "webapp")

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/git/status", "application/json",
		strings.NewReader(`{"path":"`+dir+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, "Working tree clean", out["status"])
}

func TestGitAction_FailurePropagates(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	dir := writeProject(t, cfg.ProjectsDir, "webapp")

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/git/push", "application/json",
		strings.NewReader(`{"path":"`+dir+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.NotEmpty(t, out["error"])
}

func TestHistory_WithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.db = nil

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/history")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestEvents_BroadcastReachesClient(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.hub.run(ctx)

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration races with the broadcast; give the hub a moment.
	time.Sleep(50 * time.Millisecond)
	srv.Broadcast(Event{Type: "projects-updated", Count: 3, Time: time.Now()})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "projects-updated", ev.Type)
	assert.Equal(t, 3, ev.Count)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/data", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	res, err = http.Get(ts.URL + "/api/save-data")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
