package core

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/caasmo/daybook/backend"
)

const (
	CodeOkDiaryList     = "ok_diary_list"
	CodeOkDiaryUpserted = "ok_diary_upserted"
)

// DiaryListHandler lists the current user's diary entries.
// Endpoint: GET /api/diary
// Authenticated: Yes
func (a *App) DiaryListHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	entries, err := a.Backend().ListDiaryEntries(r.Context(), identity.ID)
	if err != nil {
		a.Logger().Error("diary: list failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkDiaryList, Message: "Diary entries"},
		Data:      entries,
	})
}

// DiaryUpsertHandler creates or replaces the entry for one day. There
// is at most one entry per user and day.
// Endpoint: PUT /api/diary
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) DiaryUpsertHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}
	identity := identityFromContext(r.Context())

	var entry backend.DiaryEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if entry.Date == "" || entry.Content == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	entry.UserID = identity.ID

	upserted, err := a.Backend().UpsertDiaryEntry(r.Context(), entry)
	if err != nil {
		a.Logger().Error("diary: upsert failed", "user_id", identity.ID, "date", entry.Date, "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkDiaryUpserted, Message: "Diary entry saved"},
		Data:      upserted,
	})
}
