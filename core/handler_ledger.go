package core

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/caasmo/daybook/backend"
)

const (
	CodeOkLedgerList    = "ok_ledger_list"
	CodeOkLedgerCreated = "ok_ledger_created"

	defaultLedgerLimit = 100
)

// LedgerListHandler lists the current user's accounting records.
// Endpoint: GET /api/ledger
// Authenticated: Yes
func (a *App) LedgerListHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	limit := defaultLedgerLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJsonError(w, errorInvalidRequest)
			return
		}
		limit = n
	}

	entries, err := a.Backend().ListLedgerEntries(r.Context(), identity.ID, limit)
	if err != nil {
		a.Logger().Error("ledger: list failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkLedgerList, Message: "Ledger entries"},
		Data:      entries,
	})
}

// LedgerCreateHandler records an expense or income.
// Endpoint: POST /api/ledger
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) LedgerCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}
	identity := identityFromContext(r.Context())

	var entry backend.LedgerEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if entry.Type != "expense" && entry.Type != "income" {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if entry.Amount <= 0 || entry.TransactionDate.IsZero() {
		writeJsonError(w, errorMissingFields)
		return
	}
	entry.UserID = identity.ID

	created, err := a.Backend().CreateLedgerEntry(r.Context(), entry)
	if err != nil {
		a.Logger().Error("ledger: create failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusCreated, Code: CodeOkLedgerCreated, Message: "Ledger entry created"},
		Data:      created,
	})
}

// LedgerDeleteHandler removes one of the current user's records.
// Endpoint: DELETE /api/ledger/{id}
// Authenticated: Yes
func (a *App) LedgerDeleteHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := a.Backend().DeleteLedgerEntry(r.Context(), identity.ID, id); err != nil {
		a.Logger().Debug("ledger: delete failed", "user_id", identity.ID, "id", id, "err", err)
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonOk(w, okDeleted)
}
