package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [path]",
	Short: "Stop watching a project",
	Long: `Stop watching a project directory. Defaults to the current directory.

The project is removed from warden's view immediately. Asking the daemon to
release the watch is best-effort: if it cannot be reached, warden falls back
to terminating the watcher process it reports for the path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	o, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	// A one-shot invocation starts with an empty registry; adopt the
	// daemon's view first so the path can be found and stopped.
	ctx := context.Background()
	o.Snapshot(ctx)

	if err := o.Stop(ctx, path); err != nil {
		return err
	}
	fmt.Printf("✓ Stopped watching %s\n", path)
	return nil
}
