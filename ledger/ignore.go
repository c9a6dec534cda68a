package ledger

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnorePatterns covers version control, dependency and build output
// directories, and log files. Hidden entries are filtered separately so the
// engine's own state directory never feeds the ledger either.
var defaultIgnorePatterns = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"vendor/",
	"__pycache__/",
	"venv/",
	"dist/",
	"build/",
	"target/",
	"out/",
	"*.log",
	"*.tmp",
	"*.swp",
}

// IgnoreMatcher decides which relative paths are excluded from change
// tracking. Patterns use gitignore syntax.
type IgnoreMatcher struct {
	matcher *ignore.GitIgnore
}

// NewIgnoreMatcher builds a matcher from the default ignore set plus any
// extra configured patterns.
func NewIgnoreMatcher(extraPatterns []string) *IgnoreMatcher {
	patterns := make([]string, 0, len(defaultIgnorePatterns)+len(extraPatterns))
	patterns = append(patterns, defaultIgnorePatterns...)
	patterns = append(patterns, extraPatterns...)
	return &IgnoreMatcher{matcher: ignore.CompileIgnoreLines(patterns...)}
}

// ShouldIgnore reports whether the relative path is excluded. Any hidden path
// segment excludes the whole path.
func (m *IgnoreMatcher) ShouldIgnore(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}
	normalized := filepath.ToSlash(relPath)
	for _, segment := range strings.Split(normalized, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	// Directory patterns only match with the trailing slash, so try both.
	return m.matcher.MatchesPath(normalized) || m.matcher.MatchesPath(normalized+"/")
}

// ShouldSkipDir reports whether a directory subtree can be skipped entirely.
func (m *IgnoreMatcher) ShouldSkipDir(relPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}
	return m.ShouldIgnore(relPath)
}
