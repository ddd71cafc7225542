// Package daybook assembles the personal productivity companion
// service: a session manager over a hosted backend, the HTTP facade
// around it, and the supporting daemons.
package daybook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/caasmo/daybook/backend/pg"
	"github.com/caasmo/daybook/backup"
	"github.com/caasmo/daybook/cache/ristretto"
	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/core"
	"github.com/caasmo/daybook/crypto"
	"github.com/caasmo/daybook/db"
	"github.com/caasmo/daybook/db/zombiezen"
	"github.com/caasmo/daybook/notify"
	"github.com/caasmo/daybook/notify/discord"
	"github.com/caasmo/daybook/oauth2"
	"github.com/caasmo/daybook/router/httprouter"
	"github.com/caasmo/daybook/server"
	"github.com/caasmo/daybook/session"
)

// New builds the App and Server from the TOML config at configPath.
// Options override the default collaborators (store, router, logger).
func New(configPath string, opts ...Option) (*core.App, *server.Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	configProvider := config.NewProvider(cfg)

	app := &core.App{}
	app.SetConfigProvider(configProvider)
	for _, opt := range opts {
		opt(app)
	}

	if app.Logger() == nil {
		WithPhusLogger(nil)(app)
	}
	logger := app.Logger()

	if app.DbLocal() == nil {
		store, err := zombiezen.New(cfg.Session.DbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local store: %w", err)
		}
		app.SetDbLocal(store)
	}

	if app.Router() == nil {
		app.SetRouter(httprouter.New())
	}

	if app.Backend() == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		be, err := pg.New(ctx, configProvider, logger)
		if err != nil {
			app.DbLocal().Close()
			return nil, nil, fmt.Errorf("failed to connect to hosted service: %w", err)
		}
		app.SetBackend(be)
	}

	if app.Provider() == nil {
		app.SetProvider(oauth2.NewGoogle(configProvider, app.DbLocal(), logger))
	}

	manager := session.NewManager(app.Backend(), app.Provider(), app.DbLocal(), configProvider, logger)
	app.SetSession(manager)
	app.SetAuthenticator(core.NewDefaultAuthenticator(manager, logger, configProvider))
	app.SetValidator(core.NewValidator())
	hashKey, blockKey, err := crypto.NewCookieKeys(cfg.Jwt.AuthSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive cookie keys: %w", err)
	}
	app.SetStateCodec(securecookie.New(hashKey, blockKey))

	if app.QuickCodeCache() == nil {
		qc, err := ristretto.New[string]()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create quick code cache: %w", err)
		}
		app.SetQuickCodeCache(qc)
	}

	if app.Notifier() == nil && cfg.Notifier.WebhookURL != "" {
		n, err := discord.New(discord.Options{WebhookURL: cfg.Notifier.WebhookURL}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create notifier: %w", err)
		}
		app.SetNotifier(n)
	}
	if app.Notifier() != nil {
		observeSession(manager, app.Notifier(), logger)
	}

	// Startup resolution runs before the server accepts requests, the
	// facade never serves while the session is still resolving.
	resolveCtx, cancelResolve := context.WithTimeout(context.Background(), cfg.Session.CallTimeout.Duration)
	manager.Resolve(resolveCtx)
	cancelResolve()

	route(cfg, app)
	handler := preRouterChain(app)

	daemons := make([]server.Daemon, 0, 1)
	if cfg.BackupLocal.Activated {
		if snapshotter, ok := app.DbLocal().(db.DbBackup); ok {
			daemons = append(daemons, backup.NewLocal(configProvider, snapshotter, logger))
		} else {
			logger.Warn("backup activated but local store cannot snapshot, skipping")
		}
	}

	srv := server.NewServer(cfg.Server, handler, logger, daemons...)
	return app, srv, nil
}

// observeSession forwards session transitions to the notifier.
func observeSession(manager *session.Manager, notifier notify.Notifier, logger *slog.Logger) {
	var lastID string
	manager.OnChange(func(s session.State) {
		if s.Loading {
			return
		}
		n := notify.Notification{
			Timestamp: time.Now(),
			Type:      notify.AuditNotification,
			Level:     slog.LevelInfo,
			Source:    "session",
		}
		switch {
		case s.Identity != nil && s.Identity.ID != lastID:
			lastID = s.Identity.ID
			n.Message = "user signed in"
			n.Fields = map[string]any{"user_id": s.Identity.ID, "provider": s.Identity.AuthProvider}
		case s.Identity == nil && lastID != "":
			n.Message = "user signed out"
			n.Fields = map[string]any{"user_id": lastID}
			lastID = ""
		default:
			return
		}
		if err := notifier.Send(context.Background(), n); err != nil {
			logger.Warn("notifier: sending session audit", "err", err)
		}
	})
}
