package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "orientbot",
		Short:        "Track choice advisor and feedback classifier",
		Long:         "OrientBot evaluates academic track choices against four scores and classifies free-text feedback.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "Path to a YAML config file (overrides ORIENTBOT_CONFIG)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newFeedbackCmd())
	root.AddCommand(newTracksCmd())
	root.AddCommand(newSmokeCmd())
	return root
}
