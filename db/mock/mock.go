package mock

import (
	"sync"

	"github.com/caasmo/daybook/db"
)

// Db is an in-memory DbLocal used in tests and by callers that do not
// want persistence across restarts.
type Db struct {
	mu     sync.Mutex
	values map[string]string

	// Err, when set, is returned by every operation. Tests use it to
	// simulate a broken store.
	Err error
}

var _ db.DbLocal = (*Db)(nil)

func New() *Db {
	return &Db{values: make(map[string]string)}
}

func (d *Db) Get(key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", false, d.Err
	}
	v, ok := d.values[key]
	return v, ok, nil
}

func (d *Db) Set(key string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.values[key] = value
	return nil
}

func (d *Db) Remove(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.values, key)
	return nil
}

func (d *Db) Close() error { return nil }
