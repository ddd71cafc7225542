package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkLoggedOut      = "ok_logged_out"
	CodeOkProfileUpdated = "ok_profile_updated"
	CodeOkDeleted        = "ok_deleted"

	// errors
	CodeErrorTokenGeneration           = "err_token_generation"
	CodeErrorInvalidRequest            = "err_invalid_input"
	CodeErrorInvalidCredentials        = "err_invalid_credentials"
	CodeErrorMissingFields             = "err_missing_fields"
	CodeErrorNotFound                  = "err_not_found"
	CodeErrorTooManyRequests           = "err_too_many_requests"
	CodeErrorServiceUnavailable        = "err_service_unavailable"
	CodeErrorNoAuthHeader              = "err_no_auth_header"
	CodeErrorInvalidTokenFormat        = "err_invalid_token_format"
	CodeErrorJwtInvalidSignMethod      = "err_invalid_sign_method"
	CodeErrorJwtTokenExpired           = "err_token_expired"
	CodeErrorJwtInvalidToken           = "err_invalid_token"
	CodeErrorIpBlocked                 = "err_ip_blocked"
	CodeErrorInvalidContentType        = "err_invalid_content_type"
	CodeErrorInvalidOAuth2Provider     = "err_invalid_oauth2_provider"
	CodeErrorOAuth2InitiationFailed    = "err_oauth2_initiation_failed"
	CodeErrorOAuth2StateMismatch       = "err_oauth2_state_mismatch"
	CodeErrorOAuth2CompletionFailed    = "err_oauth2_completion_failed"
	CodeErrorBackendUnavailable        = "err_backend_unavailable"
	CodeErrorSessionMismatch           = "err_session_mismatch"
)

// precomputeBasicResponse marshals the JSON body once during
// initialization, before main() runs. writeJsonError and writeJsonOk
// then only copy the precomputed bytes, no marshaling per request.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorTokenGeneration        = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate authentication token")
	errorIpBlocked              = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorIpBlocked, "IP address has been blocked due to excessive requests. Please try again later")
	errorInvalidRequest         = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorInvalidCredentials     = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorMissingFields          = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorNotFound               = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorTooManyRequests        = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorTooManyRequests, "Too many requests, please try again later")
	errorServiceUnavailable     = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")
	errorNoAuthHeader           = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat     = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorJwtInvalidSignMethod   = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidSignMethod, "Invalid JWT signing method")
	errorJwtTokenExpired        = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtTokenExpired, "Authentication token has expired")
	errorJwtInvalidToken        = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Invalid authentication token")
	errorInvalidContentType     = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorInvalidOAuth2Provider  = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidOAuth2Provider, "Invalid OAuth2 provider specified")
	errorOAuth2InitiationFailed = precomputeBasicResponse(http.StatusBadGateway, CodeErrorOAuth2InitiationFailed, "Failed to initiate OAuth2 sign-in with the provider")
	errorOAuth2StateMismatch    = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2StateMismatch, "OAuth2 state parameter does not match the pending sign-in")
	errorOAuth2CompletionFailed = precomputeBasicResponse(http.StatusBadGateway, CodeErrorOAuth2CompletionFailed, "Failed to complete OAuth2 sign-in with the provider")
	errorBackendUnavailable     = precomputeBasicResponse(http.StatusBadGateway, CodeErrorBackendUnavailable, "The hosted service is unavailable")
	errorSessionMismatch        = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorSessionMismatch, "Token does not match the current session")

	// oks
	okLoggedOut      = precomputeBasicResponse(http.StatusOK, CodeOkLoggedOut, "Logged out")
	okProfileUpdated = precomputeBasicResponse(http.StatusOK, CodeOkProfileUpdated, "Profile updated")
	okDeleted        = precomputeBasicResponse(http.StatusOK, CodeOkDeleted, "Deleted")
)

// For successful precomputed responses
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
