package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/config"
	"github.com/wardenhq/warden/engine"
	"github.com/wardenhq/warden/orchestrator"
	"github.com/wardenhq/warden/session"
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Supervise automatic project backups",
	Long: `warden keeps your projects continuously backed up.

It delegates the heavy lifting to the keepsafe backup engine when its daemon
is reachable, and transparently falls back to a per-session watch process when
it is not. Either way you get the same thing: the project is watched, backups
happen on schedule, and recent file activity is tracked.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(engineCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newOrchestrator loads the user configuration and wires the real engine
// client and session spawner. The caller owns the returned orchestrator and
// must Close it.
func newOrchestrator() (*orchestrator.Orchestrator, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client := engine.NewClient(cfg.Engine.Binary, cfg.Engine.StateDir, cfg.CommandTimeout())

	logDir := cfg.LogDir
	if logDir == "" {
		logDir, err = session.DefaultLogDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve log directory: %w", err)
		}
	}
	spawner := session.NewSpawner(cfg.Engine.Binary, logDir)

	return orchestrator.New(cfg, client, spawner), cfg, nil
}

// projectArg resolves the optional positional path argument, defaulting to
// the current directory.
func projectArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// formatCountdown renders a duration as m:ss for the status display.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	minutes := int(d / time.Minute)
	seconds := int(d/time.Second) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
