package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and unread total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			sess, err := e.requireSession(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (user %d)\n", sess.Username, sess.UserID)

			// Unread total is best effort; an unreachable backend should not
			// make whoami fail.
			if count, err := e.client.UnreadCount(cmd.Context()); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%d unread message(s)\n", count)
			}
			return nil
		},
	}
}
