package crawshaw

import (
	"fmt"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

// Get retrieves the value stored under key. The bool reports presence;
// error is only returned for database failures.
func (d *Db) Get(key string) (string, bool, error) {
	conn := d.pool.Get(nil)
	if conn == nil {
		return "", false, fmt.Errorf("failed to get connection from pool")
	}
	defer d.pool.Put(conn)

	var value string
	var found bool
	fn := func(stmt *sqlite.Stmt) error {
		value = stmt.GetText("value")
		found = true
		return nil
	}

	if err := sqlitex.Exec(conn,
		"SELECT value FROM kv WHERE key = ? LIMIT 1", fn, key); err != nil {
		return "", false, err
	}

	return value, found, nil
}

func (d *Db) Set(key string, value string) error {
	conn := d.pool.Get(nil)
	if conn == nil {
		return fmt.Errorf("failed to get connection from pool")
	}
	defer d.pool.Put(conn)

	return sqlitex.Exec(conn,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))`,
		nil, key, value)
}

func (d *Db) Remove(key string) error {
	conn := d.pool.Get(nil)
	if conn == nil {
		return fmt.Errorf("failed to get connection from pool")
	}
	defer d.pool.Put(conn)

	return sqlitex.Exec(conn, "DELETE FROM kv WHERE key = ?", nil, key)
}
