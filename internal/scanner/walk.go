package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pydash/internal/runner"
)

// Scanner discovers projects under a scan root. Construct with New; the
// exported fields may be adjusted before the first Scan call.
type Scanner struct {
	Tables Tables
	Limits Limits

	// Runner executes the read-only git queries.
	Runner runner.Runner

	// ActiveEnv is the hosting process's active virtual-environment path
	// (normally $VIRTUAL_ENV), injected so detection stays a pure function
	// of its inputs.
	ActiveEnv string

	log *logrus.Entry
	now func() time.Time
}

// New returns a Scanner with the default tables and limits.
func New(r runner.Runner, activeEnv string) *Scanner {
	return &Scanner{
		Tables:    DefaultTables(),
		Limits:    DefaultLimits(),
		Runner:    r,
		ActiveEnv: activeEnv,
		log:       logrus.WithField("component", "scanner"),
		now:       time.Now,
	}
}

// Scan walks the immediate children of root and returns the discovered
// project records. Scan is total: every failure mode (missing root, bad
// entries, exhausted budgets) produces a valid, possibly shorter, list
// rather than an error.
func (s *Scanner) Scan(ctx context.Context, root string) []Project {
	if _, err := os.Stat(root); err != nil {
		s.seed(root)
		return nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		s.log.Warnf("error listing scan root %s: %v", root, err)
		return nil
	}
	s.log.Debugf("found %d items to check in %s", len(entries), root)

	candidates := s.admit(root, entries)

	start := s.now()
	var projects []Project
	processed := 0

	for _, cand := range candidates {
		if time.Since(start) > s.Limits.WalkBudget {
			s.log.Debugf("scan budget reached after %d items", processed)
			break
		}
		if ctx != nil && ctx.Err() != nil {
			break
		}
		processed++

		if cand.isDir {
			if s.Tables.skipName(cand.name) {
				continue
			}
			cls := s.classify(cand)
			// A directory with no primary files anywhere in the
			// bounded scan is not a project.
			if len(cls.primary) == 0 {
				s.log.Debugf("skipping %s: no primary files", cand.name)
				continue
			}
			if rec, err := s.assemble(ctx, cand, cls); err != nil {
				s.log.Debugf("dropping %s: %v", cand.name, err)
			} else {
				projects = append(projects, rec)
			}
			continue
		}

		if strings.ToLower(filepath.Ext(cand.name)) == ".py" {
			if rec, err := s.assembleFile(cand); err != nil {
				s.log.Debugf("dropping file %s: %v", cand.name, err)
			} else {
				projects = append(projects, rec)
			}
		}
	}

	s.log.Debugf("scan completed in %s: %d items processed, %d projects",
		time.Since(start).Round(time.Millisecond), processed, len(projects))
	return projects
}

// admit stats the root's children and applies the admission ceiling: when
// more than MaxEntries exist, only the most recently modified survive.
// Entries that cannot be stat'ed are skipped.
func (s *Scanner) admit(root string, entries []os.DirEntry) []candidate {
	candidates := make([]candidate, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			s.log.Debugf("error reading entry %s: %v", e.Name(), err)
			continue
		}
		candidates = append(candidates, candidate{
			name:    e.Name(),
			path:    filepath.Join(root, e.Name()),
			isDir:   e.IsDir(),
			modTime: info.ModTime(),
		})
	}

	if len(candidates) > s.Limits.MaxEntries {
		s.log.Debugf("too many items (%d), keeping the %d most recent",
			len(candidates), s.Limits.MaxEntries)
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].modTime.After(candidates[j].modTime)
		})
		candidates = candidates[:s.Limits.MaxEntries]
	}
	return candidates
}

// seed creates the scan root with one sample project so the first run is
// non-empty. Seeding never errors; failures are logged and swallowed. The
// seeding scan itself returns no records.
func (s *Scanner) seed(root string) {
	samplePath := filepath.Join(root, "sample_project")
	if err := os.MkdirAll(samplePath, 0o755); err != nil {
		s.log.Warnf("creating scan root: %v", err)
		return
	}
	content := []byte("#!/usr/bin/env python3\nprint('Hello from sample project!')\n")
	if err := os.WriteFile(filepath.Join(samplePath, "main.py"), content, 0o644); err != nil {
		s.log.Warnf("seeding sample project: %v", err)
		return
	}
	s.log.Debugf("created sample project at %s", samplePath)
}
