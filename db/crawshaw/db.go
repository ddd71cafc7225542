package crawshaw

import (
	"fmt"
	"runtime"

	"crawshaw.io/sqlite/sqlitex"

	"github.com/caasmo/daybook/db"
)

type Db struct {
	pool     *sqlitex.Pool
	ownsPool bool
}

// Verify interface implementation (non-allocating check)
var _ db.DbLocal = (*Db)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);`

// New creates a new Db instance, including creating its own pool.
func New(path string) (*Db, error) {
	poolSize := runtime.NumCPU()
	// Enable WAL mode and set a busy timeout for better concurrency handling.
	initString := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	p, err := sqlitex.Open(initString, 0, poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite pool at %s: %w", path, err)
	}

	d := &Db{pool: p, ownsPool: true}
	if err := d.migrate(); err != nil {
		p.Close()
		return nil, err
	}
	return d, nil
}

// NewWithPool creates a new Db instance using an existing pool. The
// pool lifecycle is managed externally and Close becomes a no-op.
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
	conn := d.pool.Get(nil)
	if conn == nil {
		return fmt.Errorf("failed to get connection from pool")
	}
	defer d.pool.Put(conn)

	if err := sqlitex.ExecScript(conn, schema); err != nil {
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
