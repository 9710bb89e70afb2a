package store

import (
	"fmt"
	"time"

	"pydash/internal/scanner"
)

// Scan is one recorded scan run.
type Scan struct {
	ID           int64         `json:"id"`
	TakenAt      time.Time     `json:"takenAt"`
	Root         string        `json:"root"`
	Duration     time.Duration `json:"durationNs"`
	ProjectCount int           `json:"projectCount"`
}

// ScanProject is one project row within a recorded scan.
type ScanProject struct {
	ScanID        int64  `json:"scanId"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	Kind          string `json:"kind"`
	Branch        string `json:"branch,omitempty"`
	HasGit        bool   `json:"hasGit"`
	HasChanges    bool   `json:"hasChanges"`
	NeedsFix      bool   `json:"needsFix"`
	FixReason     string `json:"fixReason,omitempty"`
	PythonFiles   int    `json:"pythonFiles"`
	RelevantFiles int    `json:"relevantFiles"`
}

// RecordScan stores one completed scan and its project rows, returning the
// new scan ID.
func (db *DB) RecordScan(root string, duration time.Duration, projects []scanner.Project) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO scans (taken_at, root, duration_ms, project_count) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), root, duration.Milliseconds(), len(projects),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range projects {
		if _, err := tx.Exec(
			`INSERT INTO scan_projects
			(scan_id, name, path, kind, branch, has_git, has_changes, needs_fix,
			 fix_reason, python_files, relevant_files)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scanID, p.Name, p.Path, string(p.Type), p.Git.Branch, p.Git.HasGit,
			p.Git.HasChanges, p.Git.NeedsFix, p.Git.FixReason,
			p.PythonFiles, p.RelevantFiles,
		); err != nil {
			return 0, fmt.Errorf("inserting project row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return scanID, nil
}

// RecentScans returns up to limit scans, newest first.
func (db *DB) RecentScans(limit int) ([]Scan, error) {
	rows, err := db.conn.Query(
		"SELECT id, taken_at, root, duration_ms, project_count FROM scans ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var s Scan
		var takenAt string
		var durationMs int64
		if err := rows.Scan(&s.ID, &takenAt, &s.Root, &durationMs, &s.ProjectCount); err != nil {
			return nil, err
		}
		s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		s.Duration = time.Duration(durationMs) * time.Millisecond
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// ProjectsForScan returns the project rows recorded for one scan.
func (db *DB) ProjectsForScan(scanID int64) ([]ScanProject, error) {
	rows, err := db.conn.Query(
		`SELECT scan_id, name, path, kind, branch, has_git, has_changes,
		        needs_fix, fix_reason, python_files, relevant_files
		 FROM scan_projects WHERE scan_id = ? ORDER BY name`,
		scanID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []ScanProject
	for rows.Next() {
		var p ScanProject
		if err := rows.Scan(&p.ScanID, &p.Name, &p.Path, &p.Kind, &p.Branch,
			&p.HasGit, &p.HasChanges, &p.NeedsFix, &p.FixReason,
			&p.PythonFiles, &p.RelevantFiles); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
