// Package session spawns and owns engine watch processes for projects that
// are not (or cannot be) delegated to the engine daemon. A session-managed
// watch lives at most as long as this process; its handle is owned
// exclusively by the orchestration layer, which must terminate it on stop.
package session

import (
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

const (
	logFilePrefix = "warden-session-"
	logFileSuffix = ".log"

	// stopTimeout bounds how long Stop waits for a graceful exit before
	// killing the process outright.
	stopTimeout = 2 * time.Second
)

// Options are the watch options forwarded to the spawned engine process.
// They mirror the daemon registration options so the fallback is equivalent.
type Options struct {
	IntervalMinutes int
	ExcludeGit      bool
}

// Handle is one owned session process.
type Handle struct {
	PID     int
	LogPath string

	cmd    *exec.Cmd
	exitCh chan struct{}
}

// Exited is closed when the session process terminates, enabling callers to
// detect early failures.
func (h *Handle) Exited() <-chan struct{} {
	return h.exitCh
}

// Spawner creates session processes running the engine binary in watch mode.
type Spawner struct {
	binary string
	logDir string
}

func NewSpawner(binary, logDir string) *Spawner {
	return &Spawner{binary: binary, logDir: logDir}
}

// Spawn starts an engine watch process rooted at projectPath with output
// redirected to a per-project log file.
func (s *Spawner) Spawn(projectPath string, opts Options) (*Handle, error) {
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := s.logPathFor(projectPath)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	args := []string{"watch", "--interval", strconv.Itoa(opts.IntervalMinutes)}
	if opts.ExcludeGit {
		args = append(args, "--exclude-git")
	}

	cmd := exec.Command(s.binary, args...)
	cmd.Dir = projectPath
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to start session process: %w", err)
	}
	logFile.Close()

	h := &Handle{
		PID:     cmd.Process.Pid,
		LogPath: logPath,
		cmd:     cmd,
		exitCh:  make(chan struct{}),
	}

	// Reap the child so a crashed session never lingers as a zombie.
	go func() {
		_ = cmd.Wait()
		close(h.exitCh)
	}()

	return h, nil
}

// Stop requests a graceful shutdown of the session process and kills it if
// it does not exit within the stop timeout.
func (s *Spawner) Stop(h *Handle) error {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return nil
	}

	select {
	case <-h.exitCh:
		return nil // already gone
	default:
	}

	if err := interruptProcess(h.cmd.Process); err != nil {
		// Interrupt delivery failed; fall through to kill.
		_ = h.cmd.Process.Kill()
	}

	select {
	case <-h.exitCh:
		return nil
	case <-time.After(stopTimeout):
	}

	if err := h.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill session process %d: %w", h.PID, err)
	}
	<-h.exitCh
	return nil
}

// logPathFor derives a stable per-project log file name from the project's
// base name plus a short path hash, so two projects named alike do not share
// a log.
func (s *Spawner) logPathFor(projectPath string) string {
	hash := fnv.New32a()
	hash.Write([]byte(projectPath))
	name := fmt.Sprintf("%s%s-%08x%s", logFilePrefix, filepath.Base(projectPath), hash.Sum32(), logFileSuffix)
	return filepath.Join(s.logDir, name)
}

// DefaultLogDir returns the OS-specific directory for session logs:
// $XDG_STATE_HOME/warden/logs (Linux), ~/Library/Logs/warden (macOS),
// %LOCALAPPDATA%\warden\logs (Windows).
func DefaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Logs", "warden"), nil
	case "windows":
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, "warden", "logs"), nil
		}
		return filepath.Join(homeDir, "AppData", "Local", "warden", "logs"), nil
	default:
		if base := os.Getenv("XDG_STATE_HOME"); base != "" {
			return filepath.Join(base, "warden", "logs"), nil
		}
		return filepath.Join(homeDir, ".local", "state", "warden", "logs"), nil
	}
}
