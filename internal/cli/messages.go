package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/msgtui"
)

func newMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "Open the messaging UI",
		Args:  cobra.NoArgs,
		RunE:  runMessages,
	}
}

func runMessages(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.requireSession(cmd)
	if err != nil {
		return err
	}

	// The UI owns the terminal; move logs to a file for the duration.
	logFile, err := logging.InitFile(logging.Config{
		Level:        e.cfg.Logging.Level,
		EnableCaller: e.cfg.Logging.EnableCaller,
	}, e.cfg.Global.DataDir)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	opts := msgtui.OptionsFromConfig(e.cfg, e.client, sess.UserID, sess.Username)
	return msgtui.Run(opts)
}
