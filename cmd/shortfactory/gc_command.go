package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGCCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Remove artifacts for items that have been terminal past the retention grace period",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			defer app.Close()

			removed, err := app.orchestrator.RunGC(cmd.Context())
			if err != nil {
				return fmt.Errorf("garbage collection: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed artifacts for %d terminal item(s)\n", removed)
			return nil
		},
	}
}
