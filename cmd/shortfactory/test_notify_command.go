package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shortfactory/internal/notifications"
)

// newTestNotifyCommand fires one EventTest notification through the
// configured notifier, the single-process equivalent of five82-spindle's
// test-notify command (which round-trips through its daemon's IPC client;
// this command has no daemon to dial, so it builds the notifier directly).
func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the configured channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.notifier.Publish(cmd.Context(), notifications.EventTest, notifications.Payload{
				"source": "shortfactory test-notify",
			}); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
