package core

import (
	"encoding/json"
	"net/http"

	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/crypto"
)

// oauth2CookieName carries the pending sign-in across the redirect
// round trip to the provider. The cookie is sealed with securecookie,
// the browser cannot read or forge the state and verifier.
const oauth2CookieName = "daybook_oauth2"

// oauth2Pending is the sealed cookie payload.
type oauth2Pending struct {
	Provider     string `json:"provider"`
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
}

// OAuth2InfoData is returned by the initiation endpoint so the browser
// can navigate to the provider's consent page.
type OAuth2InfoData struct {
	Provider string `json:"provider"`
	AuthURL  string `json:"authURL"`
}

const CodeOkOAuth2Initiated = "ok_oauth2_initiated"

// AuthWithOAuth2Handler initiates the redirect-based OAuth2 handshake.
// Endpoint: POST /api/auth-with-oauth2
// Authenticated: No
// Allowed Mimetype: application/json
//
// Completion does not arrive here: the provider redirects the browser
// to the callback endpoint, which finishes the sign-in.
func (a *App) AuthWithOAuth2Handler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Provider == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	cfg := a.Config()
	provider, ok := cfg.OAuth2Providers[req.Provider]
	if !ok || req.Provider != config.OAuth2ProviderGoogle {
		writeJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	attempt, err := a.Session().LoginWithOAuth2(r.Context(), provider.RedirectURL)
	if err != nil {
		a.Logger().Error("oauth2: initiation failed", "provider", req.Provider, "err", err)
		writeJsonError(w, errorOAuth2InitiationFailed)
		return
	}

	pending := oauth2Pending{
		Provider:     req.Provider,
		State:        attempt.State,
		CodeVerifier: attempt.CodeVerifier,
	}
	encoded, err := a.stateCodec.Encode(oauth2CookieName, pending)
	if err != nil {
		a.Logger().Error("oauth2: sealing state cookie", "err", err)
		writeJsonError(w, errorOAuth2InitiationFailed)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauth2CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkOAuth2Initiated,
			Message: "OAuth2 sign-in initiated",
		},
		Data: OAuth2InfoData{Provider: req.Provider, AuthURL: attempt.AuthURL},
	})
}

// OAuth2CallbackHandler is the provider's redirect target.
// Endpoint: GET /api/oauth2-callback
// Authenticated: No
//
// Completing the sign-in emits the provider's signed-in event, which
// the session manager turns into the upserted identity. The handler
// then mints the facade token from the resulting session.
func (a *App) OAuth2CallbackHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	cookie, err := r.Cookie(oauth2CookieName)
	if err != nil {
		writeJsonError(w, errorOAuth2StateMismatch)
		return
	}
	var pending oauth2Pending
	if err := a.stateCodec.Decode(oauth2CookieName, cookie.Value, &pending); err != nil {
		writeJsonError(w, errorOAuth2StateMismatch)
		return
	}
	if pending.State != state {
		writeJsonError(w, errorOAuth2StateMismatch)
		return
	}

	// One-shot cookie: expire it regardless of the outcome below.
	http.SetCookie(w, &http.Cookie{
		Name:     oauth2CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if _, err := a.Provider().CompleteSignIn(r.Context(), code, pending.CodeVerifier); err != nil {
		a.Logger().Error("oauth2: completing sign-in", "err", err)
		writeJsonError(w, errorOAuth2CompletionFailed)
		return
	}

	// The signed-in event is delivered synchronously, the session is
	// resolved by now unless the profile upsert failed.
	current := a.Session().Current()
	if current.Identity == nil {
		writeJsonError(w, errorOAuth2CompletionFailed)
		return
	}

	cfg := a.Config()
	token, _, err := crypto.NewJwtSessionToken(current.Identity.ID, cfg.Jwt.AuthSecret, cfg.Jwt.AuthTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, int(cfg.Jwt.AuthTokenDuration.Seconds()), current.Identity)
}
