package ledger

import (
	"fmt"
	"testing"
	"time"
)

func TestLedgerBounded(t *testing.T) {
	l := New()
	base := time.Now()

	for i := 0; i < 25; i++ {
		l.Upsert(fmt.Sprintf("file%02d.go", i), base.Add(time.Duration(i)*time.Second))
	}

	entries := l.Entries()
	if len(entries) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(entries))
	}

	// Most recent first.
	if entries[0].RelativePath != "file24.go" {
		t.Errorf("expected file24.go first, got %s", entries[0].RelativePath)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].LastModified.After(entries[i-1].LastModified) {
			t.Errorf("entries out of recency order at %d", i)
		}
	}

	// The five least-recent insertions were evicted.
	for _, e := range entries {
		for i := 0; i < 5; i++ {
			if e.RelativePath == fmt.Sprintf("file%02d.go", i) {
				t.Errorf("expected %s to be evicted", e.RelativePath)
			}
		}
	}
}

func TestLedgerUpsertMovesEntry(t *testing.T) {
	l := New()
	base := time.Now()

	l.Upsert("a.go", base)
	l.Upsert("b.go", base.Add(time.Second))
	l.Upsert("a.go", base.Add(2*time.Second))

	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after upsert, got %d", len(entries))
	}
	if entries[0].RelativePath != "a.go" {
		t.Errorf("expected a.go moved to front, got %s", entries[0].RelativePath)
	}
	if !entries[0].LastModified.Equal(base.Add(2 * time.Second)) {
		t.Errorf("expected refreshed timestamp, got %v", entries[0].LastModified)
	}
}

// Eviction removes the entry with the least-recent timestamp, which is not
// necessarily the oldest by insertion order: re-touching an old file keeps it.
func TestLedgerEvictsLeastRecentTimestamp(t *testing.T) {
	l := New()
	base := time.Now()

	for i := 0; i < Capacity; i++ {
		l.Upsert(fmt.Sprintf("file%02d.go", i), base.Add(time.Duration(i)*time.Second))
	}
	// Refresh the first-inserted file, making file01 the least recent.
	l.Upsert("file00.go", base.Add(100*time.Second))
	// Push one more distinct path past the cap.
	l.Upsert("new.go", base.Add(101*time.Second))

	entries := l.Entries()
	if len(entries) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(entries))
	}
	for _, e := range entries {
		if e.RelativePath == "file01.go" {
			t.Error("file01.go held the least-recent timestamp and should be evicted")
		}
	}
	found := false
	for _, e := range entries {
		if e.RelativePath == "file00.go" {
			found = true
		}
	}
	if !found {
		t.Error("file00.go was refreshed and must survive eviction")
	}
}

func TestLedgerUpsertReturnsSnapshot(t *testing.T) {
	l := New()
	snap := l.Upsert("a.go", time.Now())
	if len(snap) != 1 || snap[0].RelativePath != "a.go" {
		t.Fatalf("unexpected snapshot: %v", snap)
	}

	snap[0].RelativePath = "mutated"
	if l.Entries()[0].RelativePath != "a.go" {
		t.Error("snapshot mutation leaked into the ledger")
	}
}

func TestIgnoreMatcher(t *testing.T) {
	m := NewIgnoreMatcher([]string{"custom/"})

	ignored := []string{
		".git/config",
		".keepsafe/metadata.json",
		"node_modules/pkg/index.js",
		"vendor/lib/lib.go",
		"build/out.bin",
		"debug.log",
		"sub/.hidden/file.txt",
		"custom/thing.txt",
	}
	for _, path := range ignored {
		if !m.ShouldIgnore(path) {
			t.Errorf("expected %s to be ignored", path)
		}
	}

	kept := []string{
		"main.go",
		"src/app.py",
		"docs/readme.md",
	}
	for _, path := range kept {
		if m.ShouldIgnore(path) {
			t.Errorf("expected %s to be tracked", path)
		}
	}

	if m.ShouldSkipDir(".") {
		t.Error("project root must never be skipped")
	}
	if !m.ShouldSkipDir("node_modules") {
		t.Error("node_modules subtree should be skipped")
	}
}
