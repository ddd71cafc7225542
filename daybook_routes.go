package daybook

import (
	"net/http"

	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/core"
)

func route(cfg *config.Config, ap *core.App) {
	rt := ap.Router()

	// Public endpoints.
	rt.HandleFunc("POST /api/auth-with-password", ap.AuthWithPasswordHandler)
	rt.HandleFunc("POST /api/auth-with-oauth2", ap.AuthWithOAuth2Handler)
	rt.HandleFunc("GET /api/oauth2-callback", ap.OAuth2CallbackHandler)
	rt.HandleFunc("GET /api/session", ap.SessionStatusHandler)
	rt.HandleFunc("POST /api/quick-code", ap.QuickCodeHandler)

	// Everything below requires a valid facade token.
	protected := func(pattern string, h http.HandlerFunc) {
		rt.Handle(pattern, ap.JwtValidate(h))
	}

	protected("POST /api/logout", ap.LogoutHandler)
	protected("PUT /api/profile", ap.ProfileUpdateHandler)

	protected("GET /api/ledger", ap.LedgerListHandler)
	protected("POST /api/ledger", ap.LedgerCreateHandler)
	protected("DELETE /api/ledger/{id}", ap.LedgerDeleteHandler)

	protected("GET /api/diary", ap.DiaryListHandler)
	protected("PUT /api/diary", ap.DiaryUpsertHandler)

	protected("GET /api/documents", ap.DocumentListHandler)
	protected("POST /api/documents", ap.DocumentCreateHandler)
	protected("PUT /api/documents/{id}", ap.DocumentUpdateHandler)
	protected("DELETE /api/documents/{id}", ap.DocumentDeleteHandler)

	protected("GET /api/calendar", ap.CalendarListHandler)
	protected("POST /api/calendar", ap.CalendarCreateHandler)
	protected("DELETE /api/calendar/{id}", ap.CalendarDeleteHandler)
}
