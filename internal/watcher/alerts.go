package watcher

import (
	"fmt"
	"time"
)

// Compare detects notable changes between two watch states and returns alerts.
// It checks for warning-level and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	for path, p := range curr.Projects {
		old, existed := prev.Projects[path]
		if !existed {
			continue
		}

		// Project newly needs a git fix.
		if p.Git.NeedsFix && !old.Git.NeedsFix {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Needs attention: %s", p.Name),
				Message: fmt.Sprintf("Git reports %s", p.Git.FixReason),
				Time:    now,
			})
		}

		// Working tree went from clean to dirty.
		if p.Git.HasChanges && !old.Git.HasChanges {
			branch := p.Git.Branch
			if branch == "" {
				branch = "unknown branch"
			}
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Uncommitted changes: %s", p.Name),
				Message: fmt.Sprintf("Working tree on %s has uncommitted changes", branch),
				Time:    now,
			})
		}

		// Virtual environment disappeared.
		if !p.Venv.Exists && old.Venv.Exists {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Virtual environment removed: %s", p.Name),
				Message: fmt.Sprintf("%s no longer contains a venv", path),
				Time:    now,
			})
		}
	}

	return alerts
}

// compareInfo detects informational changes.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	// New projects appeared.
	for path, p := range curr.Projects {
		if _, existed := prev.Projects[path]; existed {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("New project: %s", p.Name),
			Message: fmt.Sprintf("%d Python file(s) at %s", p.PythonFiles, path),
			Time:    now,
		})
	}

	// Projects disappeared. This also fires when a project falls off the
	// admission ceiling, so it stays informational.
	for path, old := range prev.Projects {
		if _, exists := curr.Projects[path]; exists {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Project gone: %s", old.Name),
			Message: fmt.Sprintf("No longer found at %s", path),
			Time:    now,
		})
	}

	for path, p := range curr.Projects {
		old, existed := prev.Projects[path]
		if !existed {
			continue
		}

		// A previously flagged project was fixed.
		if !p.Git.NeedsFix && old.Git.NeedsFix {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("Resolved: %s", p.Name),
				Message: fmt.Sprintf("Previous issue (%s) is gone", old.Git.FixReason),
				Time:    now,
			})
		}

		// Virtual environment created.
		if p.Venv.Exists && !old.Venv.Exists {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("Virtual environment created: %s", p.Name),
				Message: fmt.Sprintf("venv detected at %s", p.Venv.Path),
				Time:    now,
			})
		}
	}

	return alerts
}
