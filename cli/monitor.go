package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/orchestrator"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream project and backup events",
	Long: `Watch every tracked project and stream events as they happen: file
changes, backup starts and completions, and project list updates. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	o, cfg, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Adopt whatever the daemon already watches, then keep reconciling.
	projects := o.Snapshot(ctx)
	fmt.Printf("Monitoring %d project(s), polling every %s. Press Ctrl+C to stop.\n",
		len(projects), cfg.PollInterval())
	o.StartPolling(ctx)

	id, events := o.Subscribe()
	defer o.Unsubscribe(id)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopping monitor...")
			return nil
		case n, ok := <-events:
			if !ok {
				return nil
			}
			printEvent(n)
		}
	}
}

func printEvent(n orchestrator.Notification) {
	ts := n.Time.Format(time.TimeOnly)
	switch n.Type {
	case orchestrator.NotifyFileChanged:
		latest := ""
		if len(n.FileChanges) > 0 {
			latest = n.FileChanges[0].RelativePath
		}
		fmt.Printf("[%s] file changed   %s (%s)\n", ts, latest, n.Path)
	case orchestrator.NotifyBackupStarted:
		fmt.Printf("[%s] backup started %s\n", ts, n.Path)
	case orchestrator.NotifyBackupCompleted:
		fmt.Printf("[%s] backup done    %s\n", ts, n.Path)
	case orchestrator.NotifyProjectListChanged:
		fmt.Printf("[%s] project list changed\n", ts)
	default:
		fmt.Printf("[%s] %s %s\n", ts, n.Type, n.Path)
	}
}
