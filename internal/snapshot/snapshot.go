// Package snapshot persists the dashboard's data file: one JSON document
// with projects, snippets, and sessions. Persistence is last-write-wins on a
// single file; there is no locking or versioning.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pydash/internal/scanner"
)

// Snippet is a saved code snippet shown in the dashboard.
type Snippet struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Code    string   `json:"code"`
	Tags    []string `json:"tags"`
	Created string   `json:"created"`
}

// Session is a logged work session.
type Session struct {
	ID      string `json:"id"`
	Project string `json:"project,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Started string `json:"started"`
}

// Data is the persisted document. The projects key is normally overwritten
// wholesale by the latest scan.
type Data struct {
	Projects []scanner.Project `json:"projects"`
	Snippets []Snippet         `json:"snippets"`
	Sessions []Session         `json:"sessions"`
}

// Default returns the seed document used when the data file is missing or a
// top-level key is absent.
func Default() Data {
	now := time.Now().Format(time.RFC3339)
	return Data{
		Projects: []scanner.Project{},
		Snippets: []Snippet{
			{
				ID:      uuid.NewString(),
				Title:   "Virtual Environment Setup",
				Code:    "# Create and activate venv\npython -m venv venv\nsource venv/bin/activate  # macOS/Linux\n# pip install -r requirements.txt",
				Tags:    []string{"venv", "setup"},
				Created: now,
			},
			{
				ID:      uuid.NewString(),
				Title:   "Quick DataFrame Info",
				Code:    "import pandas as pd\n\n# Quick data overview\ndf.info()\nprint(f\"Shape: {df.shape}\")\nprint(f\"Nulls: {df.isnull().sum().sum()}\")",
				Tags:    []string{"pandas", "data-analysis"},
				Created: now,
			},
		},
		Sessions: []Session{},
	}
}

// Load reads the data file. Missing files, unreadable files, and malformed
// documents all yield defaults; individually missing top-level keys are
// filled from defaults. Load never fails outward.
func Load(path string) Data {
	log := logrus.WithField("component", "snapshot")

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("no data file at %s, using defaults", path)
		return Default()
	}

	// Pointer fields distinguish "key absent" from "key empty".
	var stored struct {
		Projects *[]scanner.Project `json:"projects"`
		Snippets *[]Snippet         `json:"snippets"`
		Sessions *[]Session         `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Warnf("malformed data file %s: %v", path, err)
		return Default()
	}

	data := Default()
	if stored.Projects != nil {
		data.Projects = *stored.Projects
	}
	if stored.Snippets != nil {
		data.Snippets = *stored.Snippets
	}
	if stored.Sessions != nil {
		data.Sessions = *stored.Sessions
	}
	return data
}

// Save writes the document, creating the parent directory if needed.
func Save(path string, data Data) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
