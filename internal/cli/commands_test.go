package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushustle/hustle-tui/internal/session"
)

// writeTestConfig points the CLI at a scratch data dir and a test server.
func writeTestConfig(t *testing.T, baseURL string) (configPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	configPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
global:
  data_dir: %s
  config_dir: %s
api:
  base_url: %s
`, dataDir, filepath.Join(dir, "config"), baseURL)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, dataDir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginCommandSavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/login/", r.URL.Path)
		w.Write([]byte(`{"access": "acc", "refresh": "ref", "user": {"id": 3, "username": "carol"}}`))
	}))
	t.Cleanup(srv.Close)
	configPath, dataDir := writeTestConfig(t, srv.URL)

	out, err := runCommand(t, "login", "carol", "--password", "hunter2", "--config", configPath)
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as carol")

	store, err := session.Open(filepath.Join(dataDir, "session.db"))
	require.NoError(t, err)
	defer store.Close()

	sess, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "acc", sess.AccessToken)
	require.Equal(t, int64(3), sess.UserID)
}

func TestLoginCommandRejectsBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid credentials"}`))
	}))
	t.Cleanup(srv.Close)
	configPath, _ := writeTestConfig(t, srv.URL)

	_, err := runCommand(t, "login", "carol", "--password", "wrong", "--config", configPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "login failed")
}

func TestWhoamiWithoutSessionFails(t *testing.T) {
	configPath, _ := writeTestConfig(t, "http://localhost:1")

	_, err := runCommand(t, "whoami", "--config", configPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not logged in")
}

func TestWhoamiShowsUserAndUnread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/unread-count/", r.URL.Path)
		w.Write([]byte(`{"unread_count": 2}`))
	}))
	t.Cleanup(srv.Close)
	configPath, dataDir := writeTestConfig(t, srv.URL)

	store, err := session.Open(filepath.Join(dataDir, "session.db"))
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), session.Session{AccessToken: "acc", UserID: 3, Username: "carol"}))
	require.NoError(t, store.Close())

	out, err := runCommand(t, "whoami", "--config", configPath)
	require.NoError(t, err)
	require.Contains(t, out, "carol (user 3)")
	require.Contains(t, out, "2 unread")
}

func TestLogoutClearsSession(t *testing.T) {
	configPath, dataDir := writeTestConfig(t, "http://localhost:1")

	store, err := session.Open(filepath.Join(dataDir, "session.db"))
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), session.Session{AccessToken: "acc", UserID: 3, Username: "carol"}))
	require.NoError(t, store.Close())

	out, err := runCommand(t, "logout", "--config", configPath)
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	store, err = session.Open(filepath.Join(dataDir, "session.db"))
	require.NoError(t, err)
	defer store.Close()
	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCmd("test")
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"login", "logout", "whoami", "messages"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}
}
