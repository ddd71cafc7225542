package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caasmo/daybook/crypto"
	"github.com/caasmo/daybook/db"
)

func TestProfileUpdate(t *testing.T) {
	a, be, _, store := newTestApp(t)
	signIn(t, a, be)

	// The token minted at login must stay valid across a profile edit.
	token, _, err := crypto.NewJwtSessionToken("user42", a.Config().Jwt.AuthSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	a.ProfileUpdateHandler(rec, authenticatedRequest(t, a, "PUT", "/api/profile",
		`{"displayName":"Alice Cooper","avatar":"https://img.example/a.png"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var identity db.Identity
	decodeData(t, rec.Body.Bytes(), &identity)
	if identity.ID != "user42" {
		t.Errorf("identity id changed by profile update: got %q, want user42", identity.ID)
	}
	if identity.DisplayName != "Alice Cooper" {
		t.Errorf("unexpected identity %+v", identity)
	}

	current := a.Session().Current().Identity
	if current == nil || current.ID != "user42" || current.DisplayName != "Alice Cooper" {
		t.Errorf("session not updated: %+v", current)
	}

	// The persisted copy follows the session.
	stored, found, _ := store.Get(db.KeyCurrentUser)
	if !found {
		t.Fatal("expected persisted identity")
	}
	persisted, err := db.UnmarshalIdentity(stored)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.ID != "user42" {
		t.Errorf("persisted id = %q, want user42", persisted.ID)
	}

	req := httptest.NewRequest("GET", "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err, resp := a.Auth().Authenticate(req); err != nil {
		t.Errorf("login token rejected after profile update: %+v", resp)
	}
}

func TestProfileUpdateRequiresDisplayName(t *testing.T) {
	a, be, _, _ := newTestApp(t)
	signIn(t, a, be)

	rec := httptest.NewRecorder()
	a.ProfileUpdateHandler(rec, authenticatedRequest(t, a, "PUT", "/api/profile", `{"avatar":"x"}`))
	if rec.Code != errorMissingFields.status {
		t.Errorf("status = %d, want %d", rec.Code, errorMissingFields.status)
	}
}
