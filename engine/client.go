// Package engine is the boundary to the external backup engine: the commands
// this layer issues, the textual status report it parses, and the per-project
// metadata file it reads opportunistically. The engine itself is an
// independent collaborator and is never reimplemented here.
package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBinary is the engine executable resolved on PATH unless
	// configured otherwise.
	DefaultBinary = "keepsafe"
	// DefaultStateDirName is the engine-owned directory inside each watched
	// project holding its metadata.
	DefaultStateDirName = ".keepsafe"
	// DefaultCommandTimeout bounds every engine invocation so a wedged
	// engine cannot hang the caller.
	DefaultCommandTimeout = 10 * time.Second
)

// RegisterOptions are the watch options forwarded to the engine's daemon
// registration.
type RegisterOptions struct {
	IntervalMinutes int
	ExcludeGit      bool
}

// Client invokes the engine binary. Success is the absence of an error
// signal: a zero exit with no recognizable failure markers in output.
type Client struct {
	binary   string
	stateDir string
	timeout  time.Duration
}

func NewClient(binary, stateDirName string, timeout time.Duration) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if stateDirName == "" {
		stateDirName = DefaultStateDirName
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Client{binary: binary, stateDir: stateDirName, timeout: timeout}
}

// Register asks the engine daemon to take over the recurring watch for path.
func (c *Client) Register(ctx context.Context, path string, opts RegisterOptions) error {
	args := []string{"daemon", "add", path, "--interval", strconv.Itoa(opts.IntervalMinutes)}
	if opts.ExcludeGit {
		args = append(args, "--exclude-git")
	}
	_, err := c.run(ctx, "", args...)
	return err
}

// Deregister removes path from the engine daemon's watch list.
func (c *Client) Deregister(ctx context.Context, path string) error {
	_, err := c.run(ctx, "", "daemon", "remove", path)
	return err
}

// Status returns the engine-reported project stubs. A missing or malformed
// report degrades to zero stubs; only a failed invocation is an error.
func (c *Client) Status(ctx context.Context) ([]ProjectStub, error) {
	out, err := c.run(ctx, "", "daemon", "status")
	if err != nil {
		return nil, err
	}
	return ParseStatusReport(out), nil
}

// ForceBackup triggers an immediate backup of path with the given
// description.
func (c *Client) ForceBackup(ctx context.Context, path, description string) error {
	args := []string{"save"}
	if description != "" {
		args = append(args, "-m", description)
	}
	_, err := c.run(ctx, path, args...)
	return err
}

// StopEngine shuts the engine daemon down.
func (c *Client) StopEngine(ctx context.Context) error {
	_, err := c.run(ctx, "", "daemon", "stop")
	return err
}

// ReadMetadata reads the engine's per-project metadata for path. Failures
// are returned so the caller can decide to ignore them; this layer never
// treats them as fatal.
func (c *Client) ReadMetadata(path string) (*Metadata, error) {
	return ReadMetadata(path, c.stateDir)
}

// failureMarkers are output fragments the engine emits on failed operations
// even when it exits zero.
var failureMarkers = []string{"✗", "Error:", "error:", "failed to"}

// pipeWaitDelay bounds how long Wait keeps reading the output pipes after
// the command is done or killed. The engine's daemon children inherit those
// pipes and can hold them open long past the direct child's death; without
// this, CombinedOutput blocks until the last grandchild exits and the
// timeout above is meaningless.
const pipeWaitDelay = 1 * time.Second

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.WaitDelay = pipeWaitDelay
	if dir != "" {
		cmd.Dir = dir
	}

	out, err := cmd.CombinedOutput()
	output := string(out)
	if ctx.Err() == context.DeadlineExceeded {
		return output, fmt.Errorf("engine command %q timed out after %v", strings.Join(args, " "), c.timeout)
	}
	if err != nil {
		return output, fmt.Errorf("engine command %q failed: %w", strings.Join(args, " "), err)
	}
	if marker := findFailureMarker(output); marker != "" {
		return output, fmt.Errorf("engine command %q reported failure (%s)", strings.Join(args, " "), strings.TrimSpace(marker))
	}
	return output, nil
}

// findFailureMarker returns the first line of output containing a failure
// marker, or "".
func findFailureMarker(output string) string {
	for _, line := range strings.Split(output, "\n") {
		for _, marker := range failureMarkers {
			if strings.Contains(line, marker) {
				return line
			}
		}
	}
	return ""
}
