package core

import (
	"net/http"

	"github.com/caasmo/daybook/db"
)

// Standardized response format for authentication endpoints.
//
// Example:
// {
//   "status": 200,
//   "code": "ok_authentication",
//   "message": "Authentication successful",
//   "data": {
//     "token_type": "Bearer",
//     "access_token": "eyJhbGciOiJIUzI...",
//     "expires_in": 3600,
//     "record": {
//       "id": "user123",
//       "displayName": "John Doe",
//       "authProvider": "local"
//     }
//   }
// }

const (
	CodeOkAuthentication = "ok_authentication"
	CodeOkSessionStatus  = "ok_session_status"
)

// AuthData represents the authentication response structure
type AuthData struct {
	TokenType   string       `json:"token_type"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	Record      *db.Identity `json:"record"`
}

func NewAuthData(token string, expiresIn int, identity *db.Identity) *AuthData {
	return &AuthData{
		TokenType:   "Bearer",
		AccessToken: token,
		ExpiresIn:   expiresIn,
		Record:      identity,
	}
}

// writeAuthResponse writes a standardized authentication response
func writeAuthResponse(w http.ResponseWriter, token string, expiresIn int, identity *db.Identity) {
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkAuthentication,
			Message: "Authentication successful",
		},
		Data: NewAuthData(token, expiresIn, identity),
	}
	writeJsonWithData(w, response)
}
