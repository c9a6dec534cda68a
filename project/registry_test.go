package project

import (
	"sync"
	"testing"
	"time"
)

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	p := New("/home/u/proj", 20, now)
	p.Mode = DaemonManaged
	r.Put(p)

	got := r.Get("/home/u/proj")
	if got == nil {
		t.Fatal("expected project after Put")
	}
	if got.Name != "proj" {
		t.Errorf("expected derived name 'proj', got %q", got.Name)
	}
	if got.Mode != DaemonManaged {
		t.Errorf("expected DaemonManaged, got %v", got.Mode)
	}

	if !r.Remove("/home/u/proj") {
		t.Error("Remove should report the project existed")
	}
	if r.Get("/home/u/proj") != nil {
		t.Error("expected nil after Remove")
	}
	if r.Remove("/home/u/proj") {
		t.Error("second Remove should report absence")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	p := New("/home/u/proj", 20, time.Now())
	p.FileChanges = []FileChange{{RelativePath: "a.go"}}
	r.Put(p)

	got := r.Get("/home/u/proj")
	got.IntervalMinutes = 99
	got.FileChanges[0].RelativePath = "mutated"

	fresh := r.Get("/home/u/proj")
	if fresh.IntervalMinutes != 20 {
		t.Errorf("mutation leaked into registry: interval %d", fresh.IntervalMinutes)
	}
	if fresh.FileChanges[0].RelativePath != "a.go" {
		t.Errorf("ledger mutation leaked into registry: %q", fresh.FileChanges[0].RelativePath)
	}
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry()
	r.Put(New("/home/u/proj", 20, time.Now()))

	ok := r.Update("/home/u/proj", func(p *Project) {
		p.PID = 4321
	})
	if !ok {
		t.Fatal("Update should find the project")
	}
	if got := r.Get("/home/u/proj"); got.PID != 4321 {
		t.Errorf("expected PID 4321, got %d", got.PID)
	}

	if r.Update("/missing", func(p *Project) {}) {
		t.Error("Update on missing path should report false")
	}
}

func TestRegistryPathsSorted(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	for _, path := range []string{"/z", "/a", "/m"} {
		r.Put(New(path, 20, now))
	}

	paths := r.Paths()
	want := []string{"/a", "/m", "/z"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %d", len(want), len(paths))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.Put(New("/home/u/proj", 20, now))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Update("/home/u/proj", func(p *Project) { p.PID++ })
				_ = r.Get("/home/u/proj")
				_ = r.List()
			}
		}()
	}
	wg.Wait()

	if got := r.Get("/home/u/proj"); got.PID != 800 {
		t.Errorf("expected 800 updates applied, got %d", got.PID)
	}
}
