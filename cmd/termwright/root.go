package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "termwright",
		Short:         "Drive interactive terminal programs from declarative scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("log-file", "", "Write harness logs to this file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		newRunCommand(),
		newListCommand(),
	)

	return rootCmd
}
