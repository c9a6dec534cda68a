//go:build !windows
// +build !windows

package session

import (
	"fmt"
	"os"
	"syscall"
)

// IsProcessRunning checks if a process with the given PID is running.
// Signal(0) returns an error if the process doesn't exist or we lack
// permission.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// interruptProcess requests a graceful shutdown via SIGINT.
func interruptProcess(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

// TerminatePID sends SIGTERM to an arbitrary process this layer does not
// own. Used as the best-effort secondary path when daemon deregistration
// fails but the engine report exposed the watcher's PID.
func TerminatePID(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}
