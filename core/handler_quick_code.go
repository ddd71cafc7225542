package core

import (
	"encoding/json"
	"net/http"
)

const CodeOkQuickCode = "ok_quick_code"

// QuickCodeData carries the document URL a quick code resolves to.
type QuickCodeData struct {
	URL string `json:"url"`
}

// QuickCodeHandler resolves a quick code to its document URL.
// Endpoint: POST /api/quick-code
// Authenticated: No
// Allowed Mimetype: application/json
//
// A short-TTL cache sits in front of the lookup here at the HTTP
// layer. The session manager itself always performs one remote read.
func (a *App) QuickCodeHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Code == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if a.QuickCodeCache() != nil {
		if url, ok := a.QuickCodeCache().Get(req.Code); ok {
			writeQuickCode(w, url)
			return
		}
	}

	url, found, err := a.Session().LookupQuickCode(r.Context(), req.Code)
	if err != nil {
		a.Logger().Error("quick code lookup failed", "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}
	if !found {
		writeJsonError(w, errorNotFound)
		return
	}

	if a.QuickCodeCache() != nil {
		ttl := a.Config().QuickCode.CacheTTL.Duration
		a.QuickCodeCache().SetWithTTL(req.Code, url, 1, ttl)
	}
	writeQuickCode(w, url)
}

func writeQuickCode(w http.ResponseWriter, url string) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkQuickCode,
			Message: "Quick code resolved",
		},
		Data: QuickCodeData{URL: url},
	})
}
