package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caasmo/daybook/crypto"
	"github.com/caasmo/daybook/session"
)

// AuthWithPasswordHandler handles credential-based authentication (login)
// Endpoint: POST /api/auth-with-password
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Identity string `json:"identity"` // username or email
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Identity == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	identity, err := a.Session().LoginWithPassword(r.Context(), req.Identity, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrAuthenticationFailed) {
			writeJsonError(w, errorInvalidCredentials)
			return
		}
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	cfg := a.Config()
	token, _, err := crypto.NewJwtSessionToken(identity.ID, cfg.Jwt.AuthSecret, cfg.Jwt.AuthTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, int(cfg.Jwt.AuthTokenDuration.Seconds()), identity)
}
