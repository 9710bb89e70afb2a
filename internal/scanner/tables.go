package scanner

import (
	"strings"

	"github.com/gobwas/glob"
)

// Tables holds the fixed classification data the classifier matches against.
// A Tables value is immutable after construction; build one with
// DefaultTables and treat it as configuration, not mutable state.
type Tables struct {
	// PrimaryExtensions mark files as source code in the target ecosystem.
	PrimaryExtensions map[string]bool

	// RelevantExtensions mark non-primary files as project-meaningful.
	RelevantExtensions map[string]bool

	// ImportantFiles are filenames (lowercased) always considered relevant,
	// matched by equality or substring.
	ImportantFiles []string

	// SkipDirs are directory names (lowercased) never scanned.
	SkipDirs map[string]bool

	// SkipPatterns are glob patterns (e.g. *.egg-info) applied to
	// lowercased directory names.
	SkipPatterns []glob.Glob
}

// DefaultTables returns the classification tables for Python projects.
func DefaultTables() Tables {
	return Tables{
		PrimaryExtensions: set(".py"),
		RelevantExtensions: set(
			".pyx", ".pyi",
			".js", ".ts", ".jsx", ".tsx",
			".json", ".yaml", ".yml", ".toml", ".ini", ".cfg",
			".md", ".txt", ".rst",
			".sh", ".bat", ".ps1",
			".sql", ".html", ".css",
			".requirements", ".lock",
		),
		ImportantFiles: []string{
			"requirements.txt", "pyproject.toml", "setup.py", "setup.cfg",
			"pipfile", "pipfile.lock", "poetry.lock", "dockerfile",
			"makefile", "readme", "license", "changelog",
		},
		SkipDirs: set(
			"__pycache__", ".git", ".svn", ".hg", "node_modules",
			".pytest_cache", ".mypy_cache", ".tox", "venv", ".venv",
			"env", ".env", "build", "dist", ".eggs",
			".idea", ".vscode", ".ds_store", "logs", "tmp", "temp",
		),
		SkipPatterns: []glob.Glob{
			glob.MustCompile("*.egg-info"),
		},
	}
}

// skipName reports whether a directory entry is excluded from scanning by
// name: dot-prefixed, in the skip set, or matching a skip pattern.
func (t Tables) skipName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	if t.SkipDirs[lower] {
		return true
	}
	for _, p := range t.SkipPatterns {
		if p.Match(lower) {
			return true
		}
	}
	return false
}

// isPrimary matches a file's lowercased extension against the primary set.
func (t Tables) isPrimary(ext string) bool {
	return t.PrimaryExtensions[ext]
}

// isRelevant matches a non-primary file by extension, exact important name,
// or important-name substring.
func (t Tables) isRelevant(ext, lowerName string) bool {
	if t.RelevantExtensions[ext] {
		return true
	}
	for _, imp := range t.ImportantFiles {
		if lowerName == imp || strings.Contains(lowerName, imp) {
			return true
		}
	}
	return false
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}
