//go:build windows
// +build windows

package session

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

var (
	kernel32                = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess         = kernel32.NewProc("OpenProcess")
	procCloseHandle         = kernel32.NewProc("CloseHandle")
	processQueryLimitedInfo = uint32(0x1000)
)

// IsProcessRunning checks process existence via OpenProcess with
// PROCESS_QUERY_LIMITED_INFORMATION.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	handle, _, _ := procOpenProcess.Call(
		uintptr(processQueryLimitedInfo),
		uintptr(0),
		uintptr(pid),
	)
	if handle == 0 {
		return false
	}
	procCloseHandle.Call(handle)
	return true
}

// interruptProcess kills the owned process directly: os.Interrupt is not
// deliverable cross-console on Windows, and Stop's kill fallback would fire
// after the timeout anyway.
func interruptProcess(p *os.Process) error {
	return p.Kill()
}

// TerminatePID terminates an arbitrary process via taskkill.
func TerminatePID(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	if err := exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/F").Run(); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}
