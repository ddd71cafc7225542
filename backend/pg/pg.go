// Package pg implements backend.Backend over the hosted Postgres using
// pgx. Stored procedures are invoked as set-returning functions.
package pg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caasmo/daybook/backend"
	"github.com/caasmo/daybook/config"
)

type Pg struct {
	pool           *pgxpool.Pool
	configProvider *config.Provider
	logger         *slog.Logger
}

var _ backend.Backend = (*Pg)(nil)

func New(ctx context.Context, configProvider *config.Provider, logger *slog.Logger) (*Pg, error) {
	url := configProvider.Get().Backend.URL
	if url == "" {
		return nil, fmt.Errorf("backend URL is not configured")
	}

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing backend URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging backend: %w", err)
	}

	return &Pg{
		pool:           pool,
		configProvider: configProvider,
		logger:         logger.With("component", "backend"),
	}, nil
}

// NewWithPool creates a Pg using an existing pool, whose lifecycle is
// managed externally.
func NewWithPool(pool *pgxpool.Pool, configProvider *config.Provider, logger *slog.Logger) *Pg {
	return &Pg{
		pool:           pool,
		configProvider: configProvider,
		logger:         logger.With("component", "backend"),
	}
}

func (p *Pg) Close() {
	p.pool.Close()
}
