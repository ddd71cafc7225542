package core

import (
	"encoding/json"
	"net/http"
)

// ProfileUpdateHandler changes the presentation fields of the current
// identity through the remote update procedure. The user id is stable
// across edits.
// Endpoint: PUT /api/profile
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) ProfileUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		DisplayName string `json:"displayName"`
		AvatarURL   string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.DisplayName == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	identity, err := a.Session().UpdateProfile(r.Context(), req.DisplayName, req.AvatarURL)
	if err != nil {
		a.Logger().Error("profile: update failed", "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkProfileUpdated, Message: "Profile updated"},
		Data:      identity,
	})
}
