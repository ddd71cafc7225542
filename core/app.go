package core

import (
	"log/slog"

	"github.com/gorilla/securecookie"

	"github.com/caasmo/daybook/backend"
	"github.com/caasmo/daybook/cache"
	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/db"
	"github.com/caasmo/daybook/notify"
	"github.com/caasmo/daybook/oauth2"
	"github.com/caasmo/daybook/router"
	"github.com/caasmo/daybook/session"
)

// App is the application wide context.
//
// All handlers and middleware have App as receiver. It carries the
// heavy long-lived objects: the session manager, the hosted-service
// client, the local store, the router and the caches.
type App struct {
	session        *session.Manager
	backend        backend.Backend
	dbLocal        db.DbLocal
	provider       oauth2.Provider
	router         router.Router
	quickCodeCache cache.Cache[string, string]
	configProvider *config.Provider
	logger         *slog.Logger
	notifier       notify.Notifier
	authenticator  Authenticator
	validator      Validator
	stateCodec     *securecookie.SecureCookie
}

func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) Session() *session.Manager {
	return a.session
}

func (a *App) SetSession(m *session.Manager) {
	a.session = m
}

func (a *App) Backend() backend.Backend {
	return a.backend
}

func (a *App) SetBackend(b backend.Backend) {
	a.backend = b
}

func (a *App) DbLocal() db.DbLocal {
	return a.dbLocal
}

func (a *App) SetDbLocal(d db.DbLocal) {
	a.dbLocal = d
}

func (a *App) Provider() oauth2.Provider {
	return a.provider
}

func (a *App) SetProvider(p oauth2.Provider) {
	a.provider = p
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) SetQuickCodeCache(c cache.Cache[string, string]) {
	a.quickCodeCache = c
}

func (a *App) QuickCodeCache() cache.Cache[string, string] {
	return a.quickCodeCache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) SetNotifier(n notify.Notifier) {
	a.notifier = n
}

func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

func (a *App) SetValidator(v Validator) {
	a.validator = v
}

func (a *App) Validator() Validator {
	return a.validator
}

// SetStateCodec sets the codec sealing the OAuth2 state cookie.
func (a *App) SetStateCodec(sc *securecookie.SecureCookie) {
	a.stateCodec = sc
}
