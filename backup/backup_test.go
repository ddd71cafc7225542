package backup

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/caasmo/daybook/config"
)

// fakeStore writes a marker file instead of a real vacuum.
type fakeStore struct {
	err error
}

func (f *fakeStore) VacuumInto(destPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("snapshot"), 0o644)
}

func newTestLocal(t *testing.T, store *fakeStore) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.BackupLocal.BackupDir = dir
	cfg.BackupLocal.Interval = config.Duration{Duration: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLocal(config.NewProvider(cfg), store, logger), dir
}

func TestRunBackupWritesGzippedSnapshot(t *testing.T) {
	l, dir := newTestLocal(t, &fakeStore{})

	if err := l.runBackup(); err != nil {
		t.Fatalf("runBackup: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want only the gzipped snapshot", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, ".db.gz") {
		t.Fatalf("unexpected file %q", name)
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	content, err := io.ReadAll(gr)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "snapshot" {
		t.Errorf("content = %q", content)
	}
}

func TestRunBackupVacuumError(t *testing.T) {
	l, dir := newTestLocal(t, &fakeStore{err: errors.New("disk full")})

	if err := l.runBackup(); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestStartStop(t *testing.T) {
	l, _ := newTestLocal(t, &fakeStore{})
	l.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
