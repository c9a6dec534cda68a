package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/orchestrator"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watched projects and their backup countdowns",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	o, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	projects := o.ListProjects(context.Background())
	if len(projects) == 0 {
		fmt.Println("No projects are being watched.")
		return nil
	}

	now := time.Now()
	fmt.Println("Watched projects:")
	for _, p := range projects {
		fmt.Printf("\n  %s\n", p.Path)
		fmt.Printf("    Mode:        %s\n", p.Mode)
		if p.PID > 0 {
			fmt.Printf("    PID:         %d\n", p.PID)
		}
		fmt.Printf("    Interval:    %d minutes\n", p.IntervalMinutes)
		if !p.StartedAt.IsZero() {
			fmt.Printf("    Started:     %s\n", p.StartedAt.Format(time.RFC1123))
		}
		if p.LastBackupAt.IsZero() {
			fmt.Printf("    Last backup: never\n")
		} else {
			fmt.Printf("    Last backup: %s\n", p.LastBackupAt.Format(time.RFC1123))
		}
		fmt.Printf("    Next backup: %s", formatCountdown(orchestrator.Countdown(p, now)))
		if p.Overdue {
			fmt.Printf(" (overdue)")
		}
		fmt.Println()
		if n := len(p.FileChanges); n > 0 {
			fmt.Printf("    Changes:     %d recent file(s)\n", n)
		}
	}
	return nil
}
