package zombiezen

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite/sqlitex"
)

// VacuumInto writes a consistent snapshot of the store to destPath
// using sqlite's VACUUM INTO. destPath must not exist.
func (d *Db) VacuumInto(destPath string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn, `VACUUM INTO ?`, &sqlitex.ExecOptions{
		Args: []interface{}{destPath},
	})
	if err != nil {
		return fmt.Errorf("vacuum into %s failed: %w", destPath, err)
	}
	return nil
}
