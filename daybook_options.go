package daybook

import (
	"log/slog"
	"os"

	phuslog "github.com/phuslu/log"

	"github.com/caasmo/daybook/cache/ristretto"
	"github.com/caasmo/daybook/core"
	"github.com/caasmo/daybook/db/crawshaw"
	"github.com/caasmo/daybook/db/zombiezen"
	"github.com/caasmo/daybook/notify"
	"github.com/caasmo/daybook/router/httprouter"
	"github.com/caasmo/daybook/router/servemux"
)

// Option configures a collaborator on the App before the defaults
// fill in whatever is still unset.
type Option func(*core.App)

func WithDbCrawshaw(dbPath string) Option {
	return func(a *core.App) {
		store, err := crawshaw.New(dbPath)
		if err != nil {
			slog.Error("failed to open crawshaw store", "path", dbPath, "err", err)
			os.Exit(1)
		}
		a.SetDbLocal(store)
	}
}

func WithDbZombiezen(dbPath string) Option {
	return func(a *core.App) {
		store, err := zombiezen.New(dbPath)
		if err != nil {
			slog.Error("failed to open zombiezen store", "path", dbPath, "err", err)
			os.Exit(1)
		}
		a.SetDbLocal(store)
	}
}

func WithRouterServeMux() Option {
	return func(a *core.App) {
		a.SetRouter(servemux.New())
	}
}

func WithRouterHttprouter() Option {
	return func(a *core.App) {
		a.SetRouter(httprouter.New())
	}
}

func WithCacheRistretto() Option {
	return func(a *core.App) {
		c, err := ristretto.New[string]()
		if err != nil {
			slog.Error("failed to create ristretto cache", "err", err)
			os.Exit(1)
		}
		a.SetQuickCodeCache(c)
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *core.App) {
		a.SetNotifier(n)
	}
}

// DefaultLoggerOptions provides default settings for slog handlers.
// Level: Debug, removes the time attribute from output.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}

// WithPhusLogger configures slog with phuslu/log's JSON handler.
// Uses DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return func(a *core.App) {
		a.SetLogger(slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts)))
	}
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return func(a *core.App) {
		a.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}
