package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caasmo/daybook/backend"
)

func TestDiaryUpsertReplacesSameDay(t *testing.T) {
	a, be, _, _ := newTestApp(t)
	signIn(t, a, be)

	rec := httptest.NewRecorder()
	a.DiaryUpsertHandler(rec, authenticatedRequest(t, a, "PUT", "/api/diary", `{"date":"2026-08-30","content":"first draft"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, body %s", rec.Code, rec.Body.String())
	}
	var first backend.DiaryEntry
	decodeData(t, rec.Body.Bytes(), &first)

	rec = httptest.NewRecorder()
	a.DiaryUpsertHandler(rec, authenticatedRequest(t, a, "PUT", "/api/diary", `{"date":"2026-08-30","content":"rewritten"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d", rec.Code)
	}
	var second backend.DiaryEntry
	decodeData(t, rec.Body.Bytes(), &second)

	if first.ID != second.ID {
		t.Errorf("same day must keep the same entry id: %q vs %q", first.ID, second.ID)
	}

	rec = httptest.NewRecorder()
	a.DiaryListHandler(rec, authenticatedRequest(t, a, "GET", "/api/diary", ""))
	var entries []backend.DiaryEntry
	decodeData(t, rec.Body.Bytes(), &entries)
	if len(entries) != 1 || entries[0].Content != "rewritten" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestDiaryUpsertValidation(t *testing.T) {
	a, be, _, _ := newTestApp(t)
	signIn(t, a, be)

	testCases := []struct {
		name string
		body string
		want jsonResponse
	}{
		{"missing content", `{"date":"2026-08-30"}`, errorMissingFields},
		{"missing date", `{"content":"hello"}`, errorMissingFields},
		{"bad date format", `{"date":"30/08/2026","content":"hello"}`, errorInvalidRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.DiaryUpsertHandler(rec, authenticatedRequest(t, a, "PUT", "/api/diary", tc.body))
			if rec.Code != tc.want.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.want.status)
			}
		})
	}
}
