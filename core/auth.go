package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/crypto"
	"github.com/caasmo/daybook/db"
	"github.com/caasmo/daybook/session"
)

// Authenticator defines the interface for authentication operations
type Authenticator interface {
	Authenticate(r *http.Request) (*db.Identity, error, jsonResponse)
}

// DefaultAuthenticator verifies the facade token minted at login and
// checks it against the current session: a valid token for a user who
// has since logged out is rejected.
type DefaultAuthenticator struct {
	session        *session.Manager
	logger         *slog.Logger
	configProvider *config.Provider
}

func NewDefaultAuthenticator(m *session.Manager, logger *slog.Logger, configProvider *config.Provider) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		session:        m,
		logger:         logger,
		configProvider: configProvider,
	}
}

// Authenticate implements the Authenticator interface
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.Identity, error, jsonResponse) {
	errAuth := errors.New("auth error")

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errAuth, errorNoAuthHeader
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errAuth, errorInvalidTokenFormat
	}

	cfg := a.configProvider.Get()
	userID, err := crypto.ParseJwtSessionToken(tokenString, cfg.Jwt.AuthSecret)
	if err != nil {
		switch {
		case errors.Is(err, crypto.ErrJwtTokenExpired):
			return nil, errAuth, errorJwtTokenExpired
		case errors.Is(err, crypto.ErrJwtInvalidSigningMethod):
			return nil, errAuth, errorJwtInvalidSignMethod
		default:
			return nil, errAuth, errorJwtInvalidToken
		}
	}

	state := a.session.Current()
	if state.Identity == nil || state.Identity.ID != userID {
		return nil, errAuth, errorSessionMismatch
	}

	return state.Identity, nil, jsonResponse{}
}
