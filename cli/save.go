package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var saveMessage string

var saveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Trigger an immediate backup",
	Long: `Trigger an immediate backup of a watched project. Defaults to the
current directory. The backup countdown resets once it completes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveMessage, "message", "m", "", "Description recorded with the backup")
}

func runSave(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	o, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	ctx := context.Background()
	o.Snapshot(ctx)

	if err := o.ForceBackup(ctx, path, saveMessage); err != nil {
		return err
	}
	fmt.Printf("✓ Backup completed for %s\n", path)
	return nil
}
