package zombiezen

import (
	"context"
	"fmt"
	"runtime"

	"github.com/caasmo/daybook/db"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool     *sqlitex.Pool
	ownsPool bool
}

// Verify interface implementation
var _ db.DbLocal = (*Db)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);`

// New opens (creating if needed) the local store at path. WAL mode and
// a busy timeout are set for concurrency with the backup daemon.
func New(path string) (*Db, error) {
	uri := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	pool, err := sqlitex.NewPool(uri, sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite pool at %s: %w", path, err)
	}

	d := &Db{pool: pool, ownsPool: true}
	if err := d.migrate(); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

// NewWithPool creates a Db using an existing pool. The pool lifecycle
// is managed externally and Close becomes a no-op.
func NewWithPool(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	d := &Db{pool: pool}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Db) migrate() error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("failed to apply kv schema: %w", err)
	}
	return nil
}

func (d *Db) Close() error {
	if !d.ownsPool {
		return nil
	}
	return d.pool.Close()
}
