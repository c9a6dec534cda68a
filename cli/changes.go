package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var changesCmd = &cobra.Command{
	Use:   "changes [path]",
	Short: "Show recent file changes in a watched project",
	Long: `Show the most recently changed files in a watched project, newest
first. Defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChanges,
}

func runChanges(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	o, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	o.Snapshot(context.Background())

	changes, err := o.FileChanges(path)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Println("No recent file changes recorded.")
		return nil
	}

	fmt.Printf("Recent changes in %s:\n", path)
	for _, c := range changes {
		fmt.Printf("  %s  %s\n", c.LastModified.Format(time.RFC3339), c.RelativePath)
	}
	return nil
}
