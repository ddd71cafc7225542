package oauth2

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/caasmo/daybook/config"
	dbmock "github.com/caasmo/daybook/db/mock"
)

type userInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// fakeGoogle serves the token and userinfo endpoints.
type fakeGoogle struct {
	srv *httptest.Server

	info           userInfo
	lastTokenForm  url.Values
	userInfoStatus int
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{
		info: userInfo{
			Sub:           "google-sub-1",
			Name:          "Alice",
			Picture:       "https://lh3.example/alice.png",
			Email:         "alice@example.com",
			EmailVerified: true,
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastTokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-" + r.PostForm.Get("code"),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if f.userInfoStatus != 0 {
			w.WriteHeader(f.userInfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.info)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestGoogle(t *testing.T, f *fakeGoogle) (*Google, *dbmock.Db) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	p := cfg.OAuth2Providers[config.OAuth2ProviderGoogle]
	p.ClientID = "client-id"
	p.ClientSecret = "client-secret"
	p.AuthURL = f.srv.URL + "/auth"
	p.TokenURL = f.srv.URL + "/token"
	p.UserInfoURL = f.srv.URL + "/userinfo"
	cfg.OAuth2Providers[config.OAuth2ProviderGoogle] = p

	store := dbmock.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGoogle(config.NewProvider(cfg), store, logger), store
}

func TestInitiateSignIn(t *testing.T) {
	f := newFakeGoogle(t)
	g, _ := newTestGoogle(t, f)

	attempt, err := g.InitiateSignIn(context.Background(), "")
	if err != nil {
		t.Fatalf("InitiateSignIn() error = %v", err)
	}

	u, err := url.Parse(attempt.AuthURL)
	if err != nil {
		t.Fatalf("auth url does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != attempt.State {
		t.Errorf("state in url %q != returned state %q", q.Get("state"), attempt.State)
	}
	if q.Get("code_challenge_method") != "S256" {
		t.Errorf("expected S256 challenge method, got %q", q.Get("code_challenge_method"))
	}
	if q.Get("code_challenge") == "" || attempt.CodeVerifier == "" {
		t.Error("expected PKCE challenge and verifier to be set")
	}
	if strings.Contains(attempt.AuthURL, attempt.CodeVerifier) {
		t.Error("verifier must not leak into the auth url")
	}
}

func TestInitiateSignInWithoutCredentials(t *testing.T) {
	f := newFakeGoogle(t)
	g, _ := newTestGoogle(t, f)

	cfg := *g.configProvider.Get()
	p := cfg.OAuth2Providers[config.OAuth2ProviderGoogle]
	p.ClientSecret = ""
	cfg.OAuth2Providers[config.OAuth2ProviderGoogle] = p
	g.configProvider.Update(&cfg)

	if _, err := g.InitiateSignIn(context.Background(), ""); err == nil {
		t.Fatal("expected error when client credentials are missing")
	}
}

func TestCompleteSignIn(t *testing.T) {
	f := newFakeGoogle(t)
	g, store := newTestGoogle(t, f)

	var events []Event
	unsubscribe := g.Subscribe(func(ev Event) { events = append(events, ev) })
	defer unsubscribe()

	session, err := g.CompleteSignIn(context.Background(), "thecode", "theverifier")
	if err != nil {
		t.Fatalf("CompleteSignIn() error = %v", err)
	}

	if session.ProviderUserID != "google-sub-1" || session.Email != "alice@example.com" {
		t.Errorf("unexpected session %+v", session)
	}
	if session.DisplayName() != "Alice" {
		t.Errorf("expected display name Alice, got %q", session.DisplayName())
	}
	if got := f.lastTokenForm.Get("code_verifier"); got != "theverifier" {
		t.Errorf("exchange sent verifier %q", got)
	}

	if len(events) != 1 || events[0].Kind != EventSignedIn || events[0].Session == nil {
		t.Fatalf("expected one SignedIn event, got %+v", events)
	}

	if _, found, _ := store.Get(kvKeyToken); !found {
		t.Error("expected token persisted after sign in")
	}
}

func TestCompleteSignInUnverifiedEmail(t *testing.T) {
	f := newFakeGoogle(t)
	f.info.EmailVerified = false
	g, store := newTestGoogle(t, f)

	if _, err := g.CompleteSignIn(context.Background(), "thecode", "theverifier"); err == nil {
		t.Fatal("expected error for unverified email")
	}
	if _, found, _ := store.Get(kvKeyToken); found {
		t.Error("token must not be stored for a rejected sign in")
	}
}

func TestActiveSession(t *testing.T) {
	f := newFakeGoogle(t)
	g, store := newTestGoogle(t, f)

	// No stored token, no session, no error.
	session, err := g.ActiveSession(context.Background())
	if err != nil || session != nil {
		t.Fatalf("expected no session, got %+v err %v", session, err)
	}

	if _, err := g.CompleteSignIn(context.Background(), "thecode", "theverifier"); err != nil {
		t.Fatalf("CompleteSignIn() error = %v", err)
	}

	session, err = g.ActiveSession(context.Background())
	if err != nil {
		t.Fatalf("ActiveSession() error = %v", err)
	}
	if session == nil || session.ProviderUserID != "google-sub-1" {
		t.Fatalf("expected restored session, got %+v", session)
	}

	// A corrupt stored token reads as absence.
	store.Set(kvKeyToken, "{not json")
	session, err = g.ActiveSession(context.Background())
	if err != nil || session != nil {
		t.Fatalf("corrupt token: expected no session, got %+v err %v", session, err)
	}
	if _, found, _ := store.Get(kvKeyToken); found {
		t.Error("corrupt token should be discarded")
	}
}

func TestSignOut(t *testing.T) {
	f := newFakeGoogle(t)
	g, store := newTestGoogle(t, f)

	if _, err := g.CompleteSignIn(context.Background(), "thecode", "theverifier"); err != nil {
		t.Fatalf("CompleteSignIn() error = %v", err)
	}

	var events []Event
	defer g.Subscribe(func(ev Event) { events = append(events, ev) })()

	if err := g.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, found, _ := store.Get(kvKeyToken); found {
		t.Error("expected token removed on sign out")
	}
	if len(events) != 1 || events[0].Kind != EventSignedOut {
		t.Fatalf("expected one SignedOut event, got %+v", events)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	f := newFakeGoogle(t)
	g, _ := newTestGoogle(t, f)

	calls := 0
	unsubscribe := g.Subscribe(func(Event) { calls++ })
	g.emit(Event{Kind: EventSignedOut})
	unsubscribe()
	g.emit(Event{Kind: EventSignedOut})

	if calls != 1 {
		t.Errorf("expected 1 call after unsubscribe, got %d", calls)
	}
}
