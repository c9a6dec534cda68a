package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/orchestrator"
	"github.com/wardenhq/warden/overlap"
	"github.com/wardenhq/warden/project"
)

var (
	watchInterval   int
	watchSession    bool
	watchExcludeGit bool
	watchReplace    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Start watching a project for automatic backups",
	Long: `Start watching a project directory. Defaults to the current directory.

The watch is handed to the keepsafe daemon so it survives this process. If the
daemon cannot be reached, warden falls back to a session watch process owned
by this run instead; the project is watched either way.

A path nested inside an already-watched project (or containing one) is
reported as a conflict instead of being watched twice. Pass --replace to stop
the conflicting watches and watch the new path in their place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVarP(&watchInterval, "interval", "i", 0, "Backup interval in minutes (default from config)")
	watchCmd.Flags().BoolVar(&watchSession, "session", false, "Watch for this session only, skipping the daemon")
	watchCmd.Flags().BoolVar(&watchExcludeGit, "exclude-git", false, "Exclude .git from backups")
	watchCmd.Flags().BoolVar(&watchReplace, "replace", false, "Replace conflicting watches instead of reporting them")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	o, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	persistence := project.Always
	if watchSession {
		persistence = project.SessionOnly
	}
	opts := orchestratorWatchOptions(persistence)

	// Adopt the daemon's current watch list first so containment conflicts
	// with watches started by earlier runs are detected.
	ctx := context.Background()
	o.Snapshot(ctx)

	p, conflicts, err := o.Watch(ctx, path, opts)
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		if !watchReplace {
			printConflicts(path, conflicts)
			return fmt.Errorf("path conflicts with existing watches (use --replace to take over)")
		}
		remove := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			remove = append(remove, c.ConflictingPath)
		}
		p, err = o.RemoveAndRewatch(ctx, remove, path, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Replaced %d conflicting watch(es).\n", len(remove))
	}

	fmt.Printf("✓ Watching %s\n", p.Path)
	fmt.Printf("  Mode:     %s\n", p.Mode)
	fmt.Printf("  Interval: %d minutes\n", p.IntervalMinutes)

	// A session-managed watch lives only as long as this process. Stay in
	// the foreground until interrupted; a daemon-managed watch outlives us
	// and we can return immediately.
	if p.Mode == project.SessionManaged {
		fmt.Printf("  PID:      %d\n", p.PID)
		fmt.Println("\nSession watch running. Press Ctrl+C to stop.")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nStopping session watch...")
	}
	return nil
}

func orchestratorWatchOptions(persistence project.Persistence) orchestrator.WatchOptions {
	return orchestrator.WatchOptions{
		Persistence:     persistence,
		IntervalMinutes: watchInterval,
		ExcludeGit:      watchExcludeGit,
	}
}

func printConflicts(path string, conflicts []overlap.Result) {
	fmt.Printf("Cannot watch %s:\n", path)
	for _, c := range conflicts {
		fmt.Printf("  • %s\n", c.Message)
	}
}
