package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/caasmo/daybook/db"
)

const (
	CodeOkCalendarList    = "ok_calendar_list"
	CodeOkCalendarCreated = "ok_calendar_created"
)

// CalendarEvent lives only in the local store, the hosted service
// never sees it.
type CalendarEvent struct {
	ID    string `json:"id"`
	Date  string `json:"date"` // "2006-01-02"
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
}

func calendarKey(userID string) string {
	return db.KeyCalendarEventsPrefix + userID
}

func (a *App) loadCalendar(userID string) ([]CalendarEvent, error) {
	value, ok, err := a.DbLocal().Get(calendarKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var events []CalendarEvent
	if err := json.Unmarshal([]byte(value), &events); err != nil {
		return nil, fmt.Errorf("stored calendar corrupt: %w", err)
	}
	return events, nil
}

func (a *App) storeCalendar(userID string, events []CalendarEvent) error {
	value, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return a.DbLocal().Set(calendarKey(userID), string(value))
}

// CalendarListHandler lists the current user's calendar events.
// Endpoint: GET /api/calendar
// Authenticated: Yes
func (a *App) CalendarListHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	events, err := a.loadCalendar(identity.ID)
	if err != nil {
		a.Logger().Error("calendar: load failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if events == nil {
		events = []CalendarEvent{}
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkCalendarList, Message: "Calendar events"},
		Data:      events,
	})
}

// CalendarCreateHandler stores a calendar event locally.
// Endpoint: POST /api/calendar
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CalendarCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}
	identity := identityFromContext(r.Context())

	var event CalendarEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if event.Date == "" || event.Title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if _, err := time.Parse("2006-01-02", event.Date); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	event.ID = uuid.NewString()

	events, err := a.loadCalendar(identity.ID)
	if err != nil {
		a.Logger().Error("calendar: load failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	events = append(events, event)
	if err := a.storeCalendar(identity.ID, events); err != nil {
		a.Logger().Error("calendar: store failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusCreated, Code: CodeOkCalendarCreated, Message: "Calendar event created"},
		Data:      event,
	})
}

// CalendarDeleteHandler removes a locally stored calendar event.
// Endpoint: DELETE /api/calendar/{id}
// Authenticated: Yes
func (a *App) CalendarDeleteHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	events, err := a.loadCalendar(identity.ID)
	if err != nil {
		a.Logger().Error("calendar: load failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	kept := events[:0]
	removed := false
	for _, e := range events {
		if e.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		writeJsonError(w, errorNotFound)
		return
	}
	if err := a.storeCalendar(identity.ID, kept); err != nil {
		a.Logger().Error("calendar: store failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okDeleted)
}
