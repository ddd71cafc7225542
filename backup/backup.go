// Package backup snapshots the local sqlite store on a ticker.
package backup

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/db"
)

// Local periodically snapshots the local store into a gzipped copy
// under the configured backup directory.
type Local struct {
	configProvider *config.Provider
	store          db.DbBackup
	logger         *slog.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

func NewLocal(configProvider *config.Provider, store db.DbBackup, logger *slog.Logger) *Local {
	ctx, cancel := context.WithCancel(context.Background())
	return &Local{
		configProvider: configProvider,
		store:          store,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
	}
}

func (l *Local) Name() string { return "backup_local" }

// Start begins the backup loop in a goroutine.
func (l *Local) Start() {
	go func() {
		cfg := l.configProvider.Get().BackupLocal
		l.logger.Info("💾 backup: starting", "interval", cfg.Interval.Duration, "dir", cfg.BackupDir)
		ticker := time.NewTicker(cfg.Interval.Duration)
		defer ticker.Stop()

		for {
			select {
			case <-l.ctx.Done():
				l.logger.Info("💾 backup: received shutdown signal")
				close(l.shutdownDone)
				return
			case <-ticker.C:
				if err := l.runBackup(); err != nil {
					l.logger.Error("💾 backup: failed", "err", err)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the backup loop.
func (l *Local) Stop(ctx context.Context) error {
	l.logger.Info("💾 backup: stopping")
	l.cancel()

	select {
	case <-l.shutdownDone:
		l.logger.Info("💾 backup: stopped gracefully")
		return nil
	case <-ctx.Done():
		l.logger.Info("💾 backup: shutdown timed out")
		return ctx.Err()
	}
}

// runBackup vacuums the store into a fresh snapshot file and gzips it.
// The intermediate snapshot is removed, only the gzipped copy with a
// timestamped name remains.
func (l *Local) runBackup() error {
	cfg := l.configProvider.Get().BackupLocal
	if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	snapshotPath := filepath.Join(cfg.BackupDir, "daybook-"+stamp+".db")
	if err := l.store.VacuumInto(snapshotPath); err != nil {
		return fmt.Errorf("vacuum into %s: %w", snapshotPath, err)
	}
	defer os.Remove(snapshotPath)

	gzPath := snapshotPath + ".gz"
	if err := gzipFile(snapshotPath, gzPath); err != nil {
		os.Remove(gzPath)
		return fmt.Errorf("compressing %s: %w", snapshotPath, err)
	}

	l.logger.Info("💾 backup: snapshot written", "path", gzPath)
	return nil
}

func gzipFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dest.Close()

	gw := gzip.NewWriter(dest)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return dest.Close()
}
