// Package project holds the in-memory model of watched projects and the
// process-wide registry they live in.
package project

import (
	"path/filepath"
	"time"
)

// WatchMode tags who owns the recurring watch for a project. Ownership and
// cleanup responsibility follow the tag: a SessionManaged project carries a
// process handle this layer must terminate, a DaemonManaged project's process
// belongs to the external engine.
type WatchMode int

const (
	Unwatched WatchMode = iota
	DaemonManaged
	SessionManaged
)

func (m WatchMode) String() string {
	switch m {
	case DaemonManaged:
		return "daemon"
	case SessionManaged:
		return "session"
	default:
		return "unwatched"
	}
}

// Persistence is the user's declared intent for a watch. Always attempts
// daemon registration (falling back to a session process), SessionOnly skips
// the daemon entirely.
type Persistence int

const (
	Always Persistence = iota
	SessionOnly
)

func (p Persistence) String() string {
	if p == SessionOnly {
		return "session-only"
	}
	return "always"
}

// DefaultIntervalMinutes is the backup interval applied when the caller does
// not specify one.
const DefaultIntervalMinutes = 20

// FileChange is one entry of a project's change ledger.
type FileChange struct {
	RelativePath string
	LastModified time.Time
}

// Project is one watched directory. Path is the canonical absolute path and
// the unique registry key.
type Project struct {
	Path            string
	Name            string
	Mode            WatchMode
	Persistence     Persistence
	PID             int // engine-reported or session process PID, 0 if unknown
	IntervalMinutes int
	StartedAt       time.Time
	LastBackupAt    time.Time // zero until a backup completion is observed
	FileChanges     []FileChange

	// Derived fields, recomputed from the above; never authoritative.
	NextBackupAt time.Time
	Overdue      bool
}

// New returns a project record for a canonical path with derived defaults
// applied.
func New(path string, intervalMinutes int, now time.Time) *Project {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	return &Project{
		Path:            path,
		Name:            filepath.Base(path),
		Mode:            Unwatched,
		IntervalMinutes: intervalMinutes,
		StartedAt:       now,
	}
}

// Clone returns a deep copy safe to hand outside the registry lock.
func (p *Project) Clone() *Project {
	cp := *p
	if p.FileChanges != nil {
		cp.FileChanges = make([]FileChange, len(p.FileChanges))
		copy(cp.FileChanges, p.FileChanges)
	}
	return &cp
}
