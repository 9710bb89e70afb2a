// Package scanner provides time-bounded project discovery under a scan root
// and the status classification that turns filesystem and git observations
// into project records.
package scanner

import (
	"time"

	"pydash/internal/git"
	"pydash/internal/venv"
)

// Kind distinguishes directory projects from standalone source files.
type Kind string

// Project kinds.
const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// candidate is one immediate child of the scan root. Candidates are
// recomputed on every scan and never persisted.
type candidate struct {
	name    string
	path    string
	isDir   bool
	modTime time.Time
}

// classified is the per-directory result of the file classifier: primary
// (Python source) file paths and relevant (config/docs/etc.) file paths,
// disjoint by construction.
type classified struct {
	primary  []string
	relevant []string
}

// Project is the record the scanner returns for each discovered project.
// Records are built fresh on every scan; Favorite is the only field a caller
// is expected to carry across scans from the snapshot file (the scanner does
// not merge it back).
type Project struct {
	Name          string      `json:"name"`
	Path          string      `json:"path"`
	Type          Kind        `json:"type"`
	Venv          venv.Status `json:"venv"`
	Git           git.Status  `json:"git"`
	LastModified  string      `json:"lastModified"`
	PythonFiles   int         `json:"pythonFiles"`
	RelevantFiles int         `json:"relevantFiles"`
	Size          int64       `json:"size,omitempty"`
	Favorite      bool        `json:"favorite"`
}

// Limits are the admission-control and time budgets of a scan. The defaults
// match the documented behavior; tests shrink them.
type Limits struct {
	// MaxEntries is the admission ceiling: when the root has more
	// children, only the most recently modified MaxEntries are considered.
	MaxEntries int

	// WalkBudget bounds the whole scan's wall-clock time.
	WalkBudget time.Duration

	// EntryBudget bounds the classification of a single directory.
	EntryBudget time.Duration

	// MaxFilesPerDir caps the combined primary+relevant count collected at
	// a directory's root level.
	MaxFilesPerDir int

	// DeepThreshold: the one-level-deeper pass only runs when fewer than
	// this many files were seen and less than half the entry budget is spent.
	DeepThreshold int

	// MaxDeepPrimary caps how many additional primary files the deeper
	// pass may contribute.
	MaxDeepPrimary int
}

// DefaultLimits returns the documented scan limits.
func DefaultLimits() Limits {
	return Limits{
		MaxEntries:     50,
		WalkBudget:     15 * time.Second,
		EntryBudget:    3 * time.Second,
		MaxFilesPerDir: 100,
		DeepThreshold:  20,
		MaxDeepPrimary: 50,
	}
}
