package db

// Key for the serialized Identity of the currently authenticated user.
// This is the only key the session manager itself writes.
const KeyCurrentUser = "current_user"

// KeyCalendarEventsPrefix prefixes the per-user key holding the
// locally stored calendar events.
const KeyCalendarEventsPrefix = "calendar_events_"

// DbKV is the local persistence contract: a flat string key/value
// store. Get reports presence explicitly so an empty value and a
// missing key can be told apart.
type DbKV interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	Remove(key string) error
}

// DbLifecycle handles database connection cleanup
type DbLifecycle interface {
	Close() error
}

// DbLocal is the interface the application requires from the concrete
// local store implementation (crawshaw or zombiezen).
type DbLocal interface {
	DbKV
	DbLifecycle
}

// DbBackup is implemented by local stores that can snapshot themselves.
// The backup daemon degrades to a no-op when the store does not.
type DbBackup interface {
	VacuumInto(destPath string) error
}
