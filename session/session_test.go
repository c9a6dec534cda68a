package session

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipIfWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on Unix shell utilities")
	}
}

// writeFakeEngine drops an executable shell script standing in for the
// engine binary and returns its path.
func writeFakeEngine(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-engine")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpawnAndStop(t *testing.T) {
	skipIfWindows(t)

	logDir := t.TempDir()
	projectDir := t.TempDir()

	// A stand-in engine that ignores its watch args and sleeps.
	s := NewSpawner(writeFakeEngine(t, "#!/bin/sh\nsleep 30\n"), logDir)
	h, err := s.Spawn(projectDir, Options{IntervalMinutes: 20})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	if h.PID <= 0 {
		t.Errorf("expected positive PID, got %d", h.PID)
	}
	if h.LogPath == "" || !strings.HasPrefix(filepath.Base(h.LogPath), logFilePrefix) {
		t.Errorf("unexpected log path: %s", h.LogPath)
	}

	if err := s.Stop(h); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case <-h.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after Stop")
	}
	if IsProcessRunning(h.PID) {
		t.Errorf("process %d still running after Stop", h.PID)
	}
}

func TestSpawnEarlyExitObservable(t *testing.T) {
	skipIfWindows(t)

	s := NewSpawner(writeFakeEngine(t, "#!/bin/sh\nexit 1\n"), t.TempDir())
	h, err := s.Spawn(t.TempDir(), Options{IntervalMinutes: 20})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	select {
	case <-h.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("expected early exit to be observable")
	}
}

func TestSpawnMissingBinary(t *testing.T) {
	s := NewSpawner("warden-test-no-such-binary", t.TempDir())
	if _, err := s.Spawn(t.TempDir(), Options{IntervalMinutes: 20}); err == nil {
		t.Error("expected error for missing engine binary")
	}
}

func TestStopNilHandle(t *testing.T) {
	s := NewSpawner("sleep", t.TempDir())
	if err := s.Stop(nil); err != nil {
		t.Errorf("Stop(nil) should be a no-op, got %v", err)
	}
}

func TestLogPathStablePerProject(t *testing.T) {
	s := NewSpawner("sleep", "/tmp/logs")
	a := s.logPathFor("/home/u/proj")
	b := s.logPathFor("/home/u/proj")
	c := s.logPathFor("/home/other/proj")

	if a != b {
		t.Errorf("log path not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Error("distinct projects with the same name must not share a log file")
	}
}

func TestIsProcessRunningSelf(t *testing.T) {
	if !IsProcessRunning(os.Getpid()) {
		t.Error("current process should be reported running")
	}
	if IsProcessRunning(0) || IsProcessRunning(-1) {
		t.Error("non-positive PIDs are never running")
	}
}
