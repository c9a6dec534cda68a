package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Control the backup engine daemon",
}

var engineStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Shut down the backup engine daemon",
	Long: `Ask the backup engine daemon to shut down. All daemon-managed
watches stop with it; session watches owned by other processes are not
affected.`,
	Args: cobra.NoArgs,
	RunE: runEngineStop,
}

func init() {
	engineCmd.AddCommand(engineStopCmd)
}

func runEngineStop(cmd *cobra.Command, args []string) error {
	o, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer o.Close()

	if err := o.StopEngine(context.Background()); err != nil {
		return err
	}
	fmt.Println("✓ Engine daemon stopped")
	return nil
}
