package notify

import (
	"context"
	"log/slog"
	"time"
)

type Type int

const (
	AuditNotification Type = iota
	AlarmNotification
)

func (nt Type) String() string {
	switch nt {
	case AuditNotification:
		return "Audit"
	case AlarmNotification:
		return "Alarm"
	default:
		return "Unknown"
	}
}

type Notification struct {
	Timestamp time.Time
	Type      Type
	Level     slog.Level
	Source    string
	Message   string
	Fields    map[string]any
}

// Notifier dispatches audit and alarm notifications to a backend.
// Implementations MUST be safe for concurrent use by multiple
// goroutines.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
