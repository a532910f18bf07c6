package main

import (
	"github.com/spf13/cobra"
)

func newRunOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Discover eligible items, drain every stage once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.orchestrator.Start(cmd.Context()); err != nil {
				return err
			}
			defer app.orchestrator.Stop()

			return app.orchestrator.RunOnce(cmd.Context())
		},
	}
}

func newRunLoopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run-loop",
		Short: "Run the continuous approval watch and daily producer schedule until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.orchestrator.Start(cmd.Context()); err != nil {
				return err
			}
			defer app.orchestrator.Stop()

			return app.orchestrator.RunLoop(cmd.Context())
		},
	}
}
