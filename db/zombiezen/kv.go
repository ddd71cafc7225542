package zombiezen

import (
	"context"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Get retrieves the value stored under key.
// Returns:
// - string: the stored value, empty if no matching record exists
// - bool: whether the key was present
// - error: only for database errors, nil on a clean miss
func (d *Db) Get(key string) (string, bool, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return "", false, err
	}
	defer d.pool.Put(conn)

	var value string
	var found bool
	err = sqlitex.Execute(conn,
		`SELECT value FROM kv WHERE key = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value = stmt.ColumnText(0)
				found = true
				return nil
			},
			Args: []interface{}{key},
		})
	if err != nil {
		return "", false, err
	}

	return value, found, nil
}

func (d *Db) Set(key string, value string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	return sqlitex.Execute(conn,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))`,
		&sqlitex.ExecOptions{
			Args: []interface{}{key, value},
		})
}

func (d *Db) Remove(key string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	return sqlitex.Execute(conn,
		`DELETE FROM kv WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{key},
		})
}
