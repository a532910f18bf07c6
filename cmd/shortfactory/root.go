package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	appCtx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "shortfactory",
		Short:         "Autonomous short-form video production pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := appCtx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunOnceCommand(appCtx))
	rootCmd.AddCommand(newRunLoopCommand(appCtx))
	rootCmd.AddCommand(newResetCommand(appCtx))
	rootCmd.AddCommand(newStatusCommand(appCtx))
	rootCmd.AddCommand(newGCCommand(appCtx))
	rootCmd.AddCommand(newTestNotifyCommand(appCtx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
