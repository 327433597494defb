package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/config"
	"github.com/qpath/qpath/internal/llm"
	"github.com/qpath/qpath/internal/logging"
	"github.com/qpath/qpath/internal/mentor"
	"github.com/qpath/qpath/internal/migrate"
	"github.com/qpath/qpath/internal/store"
	"github.com/qpath/qpath/internal/views"
)

// env is what every command works with: configuration, logger, the local
// store and the session client on top of it.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	store  *store.Store
	client *api.Client
}

// setup loads the configuration, applies the persistent flags and opens
// the store and the client. Callers must Close the env.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client, err := api.New(cmd.Context(), api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Storage: st.KV(),
		Logger:  logger,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &env{cfg: cfg, log: logger, store: st, client: client}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store failed", "error", err)
	}
}

// loadConfig reads the config file, then lets flags override it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.Path = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path (--db flag or
// QPATH_DB), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Storage.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// currentUser fetches the logged-in user, turning a missing or expired
// session into a hint to log in.
func (e *env) currentUser(ctx context.Context) (*api.User, error) {
	if !e.client.Authenticated() {
		return nil, errNotLoggedIn
	}
	user, err := e.client.CurrentUser(ctx)
	if errors.Is(err, api.ErrSessionExpired) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return user, nil
}

var errNotLoggedIn = errors.New("sessão expirada ou inexistente; execute `qpath login`")

// migrator runs the legacy migrations for user.
func (e *env) migrator(user *api.User) *migrate.Migrator {
	return migrate.New(e.store.KV(), e.client, strconv.Itoa(user.ID), e.log)
}

func (e *env) dashboardView(user *api.User) *views.Dashboard {
	return views.NewDashboard(e.client, e.migrator(user), e.log)
}

func (e *env) tracksView(user *api.User) *views.Tracks {
	return views.NewTracks(e.client, e.migrator(user), e.log)
}

func (e *env) profileView(user *api.User) *views.Profile {
	return views.NewProfile(e.client, e.migrator(user), e.log)
}

// advisor builds the Q-Mentor advisor for the configured mode. A local
// provider that cannot be built only disables the local path.
func (e *env) advisor(ctx context.Context) (mentor.Advisor, error) {
	var provider llm.Provider
	if e.cfg.Mentor.Provider != "" {
		p, err := llm.NewProvider(ctx, e.cfg.Mentor, e.log)
		if err != nil {
			e.log.Warn("local mentor provider unavailable", "provider", e.cfg.Mentor.Provider, "error", err)
		} else {
			provider = p
		}
	}
	return mentor.New(e.cfg.Mentor, e.client, provider, e.store.MentorEventRepo(), e.log)
}
