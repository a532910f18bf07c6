package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <item_id>",
		Short: "Re-enter a failed item at its last approved state, clearing error and retry state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			defer app.Close()

			itemID := args[0]
			if err := app.orchestrator.Reset(cmd.Context(), itemID); err != nil {
				return fmt.Errorf("reset %s: %w", itemID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %s reset to approved\n", itemID)
			return nil
		},
	}
}
