package core

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/caasmo/daybook/notify"
)

// LogoutHandler clears the session.
// Endpoint: POST /api/logout
// Authenticated: Yes
//
// Logout never fails from the caller's perspective: local state is
// cleared first and a failing provider sign-out is swallowed.
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	a.Session().Logout(r.Context())

	if a.Notifier() != nil && identity != nil {
		n := notify.Notification{
			Timestamp: time.Now(),
			Type:      notify.AuditNotification,
			Level:     slog.LevelInfo,
			Source:    "session",
			Message:   "user logged out",
			Fields:    map[string]any{"user_id": identity.ID, "provider": identity.AuthProvider},
		}
		if err := a.Notifier().Send(r.Context(), n); err != nil {
			a.Logger().Warn("notifier: sending logout audit", "err", err)
		}
	}

	writeJsonOk(w, okLoggedOut)
}
