package core

import (
	"net/http"

	"github.com/caasmo/daybook/db"
)

// SessionData mirrors the reactive pair the session manager exposes.
type SessionData struct {
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	Record        *db.Identity `json:"record,omitempty"`
}

// SessionStatusHandler reports the current session state.
// Endpoint: GET /api/session
// Authenticated: No
func (a *App) SessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	state := a.Session().Current()
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkSessionStatus,
			Message: "Session status",
		},
		Data: SessionData{
			Authenticated: state.Authenticated(),
			Loading:       state.Loading,
			Record:        state.Identity,
		},
	})
}
