package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// classify performs the bounded two-level scan of one directory entry. The
// root level collects primary and relevant files under the per-entry time
// budget and the combined file cap; when enough budget and headroom remain,
// exactly one additional level of subdirectories is searched for primary
// files only.
//
// A failure anywhere contributes zero files; classify never aborts the walk.
func (s *Scanner) classify(entry candidate) classified {
	start := time.Now()
	var cls classified

	items, err := os.ReadDir(entry.path)
	if err != nil {
		s.log.Debugf("error scanning directory %s: %v", entry.name, err)
		return cls
	}

	for _, it := range items {
		if time.Since(start) > s.Limits.EntryBudget {
			s.log.Debugf("directory %s scan timeout, skipping deeper scan", entry.name)
			break
		}
		if it.IsDir() {
			continue
		}

		name := it.Name()
		lower := strings.ToLower(name)
		ext := strings.ToLower(filepath.Ext(name))

		if s.Tables.isPrimary(ext) {
			cls.primary = append(cls.primary, filepath.Join(entry.path, name))
		} else if s.Tables.isRelevant(ext, lower) {
			cls.relevant = append(cls.relevant, filepath.Join(entry.path, name))
		}

		if len(cls.primary)+len(cls.relevant) > s.Limits.MaxFilesPerDir {
			s.log.Debugf("file limit reached for %s", entry.name)
			break
		}
	}

	// One level deeper, primary files only, when the shallow pass was cheap
	// and sparse. This keeps huge unrelated trees from eating the walk
	// budget while still finding multi-package layouts.
	if time.Since(start) < s.Limits.EntryBudget/2 &&
		len(cls.primary)+len(cls.relevant) < s.Limits.DeepThreshold {
		cls.primary = append(cls.primary, s.deepPrimary(entry, items, start)...)
	}

	return cls
}

// deepPrimary collects primary files from the entry's immediate
// subdirectories, capped at MaxDeepPrimary additional files.
func (s *Scanner) deepPrimary(entry candidate, items []os.DirEntry, start time.Time) []string {
	var found []string
	for _, sub := range items {
		if time.Since(start) > s.Limits.EntryBudget {
			break
		}
		if !sub.IsDir() || s.Tables.skipName(sub.Name()) {
			continue
		}

		subPath := filepath.Join(entry.path, sub.Name())
		subItems, err := os.ReadDir(subPath)
		if err != nil {
			s.log.Debugf("error scanning subdirectory %s: %v", subPath, err)
			continue
		}
		for _, f := range subItems {
			if f.IsDir() {
				continue
			}
			if s.Tables.isPrimary(strings.ToLower(filepath.Ext(f.Name()))) {
				found = append(found, filepath.Join(subPath, f.Name()))
				if len(found) >= s.Limits.MaxDeepPrimary {
					return found
				}
			}
		}
	}
	return found
}
