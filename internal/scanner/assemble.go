package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pydash/internal/git"
	"pydash/internal/venv"
)

// recencySampleSize caps how many primary files are stat'ed for the
// recency label.
const recencySampleSize = 10

// assemble merges the classifier's counts with environment and git status
// into one project record. A failure drops the record entirely rather than
// returning it with partial data.
func (s *Scanner) assemble(ctx context.Context, entry candidate, cls classified) (Project, error) {
	abs, err := filepath.Abs(entry.path)
	if err != nil {
		return Project{}, err
	}

	last := s.lastModified(entry, cls.primary)

	return Project{
		Name:          entry.name,
		Path:          abs,
		Type:          KindFolder,
		Venv:          venv.Detect(abs, s.ActiveEnv),
		Git:           git.DetectStatus(ctx, s.Runner, abs),
		LastModified:  RelativeTime(last, s.now()),
		PythonFiles:   len(cls.primary),
		RelevantFiles: len(cls.relevant),
	}, nil
}

// assembleFile builds the record for a standalone source file: fixed
// "no environment"/"no VCS" placeholders plus the file's own size and mtime.
func (s *Scanner) assembleFile(entry candidate) (Project, error) {
	abs, err := filepath.Abs(entry.path)
	if err != nil {
		return Project{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Project{}, err
	}
	return Project{
		Name:         entry.name,
		Path:         abs,
		Type:         KindFile,
		Venv:         venv.Status{},
		Git:          git.Status{},
		LastModified: RelativeTime(info.ModTime(), s.now()),
		PythonFiles:  1,
		Size:         info.Size(),
	}, nil
}

// lastModified returns the newest mtime among up to recencySampleSize of the
// entry's most recent primary files, falling back to the directory's own
// mtime when none can be read.
func (s *Scanner) lastModified(entry candidate, primary []string) time.Time {
	times := make([]time.Time, 0, len(primary))
	for _, p := range primary {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		times = append(times, info.ModTime())
	}
	if len(times) == 0 {
		return entry.modTime
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	if len(times) > recencySampleSize {
		times = times[:recencySampleSize]
	}
	return times[0]
}
