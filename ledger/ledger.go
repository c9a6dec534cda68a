// Package ledger tracks recently modified files for one watched project. The
// ledger is bounded and recency-ordered: it holds at most Capacity entries,
// most recently modified first, and inserting past the cap evicts the entry
// with the least-recent timestamp.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/wardenhq/warden/project"
)

// Capacity is the maximum number of entries a ledger retains.
const Capacity = 20

type Ledger struct {
	mu      sync.Mutex
	entries []project.FileChange
}

func New() *Ledger {
	return &Ledger{}
}

// Upsert records that relativePath was modified at modTime, moving an
// existing entry to its recency position, and returns the full ordered ledger
// (most recent first).
func (l *Ledger) Upsert(relativePath string, modTime time.Time) []project.FileChange {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.RelativePath == relativePath {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}

	// Insert keeping most-recent-first order. Events usually arrive in
	// timestamp order so this lands at the front.
	pos := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].LastModified.Before(modTime)
	})
	l.entries = append(l.entries, project.FileChange{})
	copy(l.entries[pos+1:], l.entries[pos:])
	l.entries[pos] = project.FileChange{RelativePath: relativePath, LastModified: modTime}

	// Entries are sorted by recency, so the tail holds the least-recent
	// timestamp regardless of insertion order.
	if len(l.entries) > Capacity {
		l.entries = l.entries[:Capacity]
	}

	return l.snapshotLocked()
}

// Entries returns a copy of the ledger, most recent first.
func (l *Ledger) Entries() []project.FileChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) snapshotLocked() []project.FileChange {
	out := make([]project.FileChange, len(l.entries))
	copy(out, l.entries)
	return out
}
