// Package overlap classifies a candidate watch path against already-watched
// paths. A candidate inside (or identical to) an existing watch is a Child
// overlap; a candidate that would subsume an existing watch is a Parent
// overlap. The checker is pure: it never touches the registry.
package overlap

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Kind int

const (
	// Child means the candidate is inside, or identical to, an existing
	// watched path. An exact duplicate reports Child with ConflictingPath
	// equal to the candidate.
	Child Kind = iota
	// Parent means the candidate would subsume an existing watched path.
	Parent
)

func (k Kind) String() string {
	switch k {
	case Child:
		return "child"
	case Parent:
		return "parent"
	default:
		return "unknown"
	}
}

// Result describes one containment conflict between the candidate and a
// single existing watch. A candidate may produce several results.
type Result struct {
	Kind            Kind
	ConflictingPath string
	ConflictingName string
	Message         string
}

// Canonicalize resolves a path to its comparable form: symlinks resolved when
// possible, made absolute, cleaned. Two paths that canonicalize equally are
// the same watch target.
func Canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// Check classifies candidate against every existing watched path and returns
// all conflicts. Both sides are canonicalized before comparison. No conflicts
// yields a nil slice.
func Check(candidate string, existing []string) []Result {
	cand := Canonicalize(candidate)
	sep := string(filepath.Separator)

	var results []Result
	for _, raw := range existing {
		ex := Canonicalize(raw)
		name := filepath.Base(ex)
		switch {
		case cand == ex || strings.HasPrefix(cand, ex+sep):
			results = append(results, Result{
				Kind:            Child,
				ConflictingPath: ex,
				ConflictingName: name,
				Message:         fmt.Sprintf("%s is already covered by the watch on %s", cand, ex),
			})
		case strings.HasPrefix(ex, cand+sep):
			results = append(results, Result{
				Kind:            Parent,
				ConflictingPath: ex,
				ConflictingName: name,
				Message:         fmt.Sprintf("%s would subsume the existing watch on %s", cand, ex),
			})
		}
	}
	return results
}
