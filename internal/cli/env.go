package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campushustle/hustle-tui/internal/api"
	"github.com/campushustle/hustle-tui/internal/config"
	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/session"
)

// env bundles the pieces every command needs: loaded config, the session
// store, and an API client (unauthenticated until a session is attached).
type env struct {
	cfg    *config.Config
	store  *session.Store
	client *api.Client
}

func (e *env) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// loadEnv loads config, applies CLI flag overrides, initializes logging, and
// opens the session store.
func loadEnv(cmd *cobra.Command) (*env, error) {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	store, err := session.Open(cfg.SessionPath())
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &env{cfg: cfg, store: store, client: client}, nil
}

// requireSession loads the stored session and binds the client to it.
func (e *env) requireSession(cmd *cobra.Command) (session.Session, error) {
	sess, err := e.store.Load(cmd.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return session.Session{}, fmt.Errorf("not logged in, run `hustle-tui login` first")
		}
		return session.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !sess.Valid() {
		return session.Session{}, fmt.Errorf("stored session is incomplete, run `hustle-tui login` again")
	}
	e.client = e.client.WithSession(sess)
	return sess, nil
}
