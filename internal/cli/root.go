// Package cli wires the hustle-tui commands: login, logout, whoami, and the
// messaging UI itself.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hustle-tui",
		Short:         "Terminal client for campus marketplace messaging",
		Long:          "hustle-tui is a terminal client for the campus marketplace. It shows your conversations, polls open threads for new messages, and lets you start new ones.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation opens the messaging UI.
			return runMessages(cmd, args)
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newMessagesCmd(),
	)

	return cmd
}
