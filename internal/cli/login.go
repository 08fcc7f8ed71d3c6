package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/campushustle/hustle-tui/internal/session"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate and store a session",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLogin,
	}
	cmd.Flags().String("password", "", "Password (prompts if omitted)")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	username := ""
	if len(args) > 0 {
		username = strings.TrimSpace(args[0])
	}
	if username == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Username: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username required")
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password, err = promptPassword(cmd)
		if err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password required")
	}

	result, err := e.client.Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sess := session.Session{
		AccessToken:  result.Access,
		RefreshToken: result.Refresh,
		UserID:       result.User.ID,
		Username:     result.User.Username,
		SavedAt:      time.Now(),
	}
	if err := e.store.Save(cmd.Context(), sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Username)
	return nil
}

// promptPassword reads the password without echo when stdin is a terminal,
// and falls back to a plain line read otherwise (tests, pipes).
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
