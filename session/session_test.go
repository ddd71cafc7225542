package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/caasmo/daybook/backend"
	backendmock "github.com/caasmo/daybook/backend/mock"
	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/db"
	dbmock "github.com/caasmo/daybook/db/mock"
	"github.com/caasmo/daybook/oauth2"
)

// fakeProvider is an in-test oauth2.Provider with a scriptable active
// session and direct access to the subscriber for event injection.
type fakeProvider struct {
	active     *oauth2.RemoteSession
	activeErr  error
	initErr    error
	signOutErr error

	signOutCalls int
	subscriber   func(oauth2.Event)
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) ActiveSession(ctx context.Context) (*oauth2.RemoteSession, error) {
	return p.active, p.activeErr
}

func (p *fakeProvider) InitiateSignIn(ctx context.Context, redirectTarget string) (*oauth2.SignInAttempt, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	return &oauth2.SignInAttempt{AuthURL: "https://provider.example/auth", State: "state", CodeVerifier: "verifier"}, nil
}

func (p *fakeProvider) CompleteSignIn(ctx context.Context, code, codeVerifier string) (*oauth2.RemoteSession, error) {
	return nil, errors.New("not used")
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.signOutCalls++
	return p.signOutErr
}

func (p *fakeProvider) Subscribe(fn func(oauth2.Event)) func() {
	p.subscriber = fn
	return func() { p.subscriber = nil }
}

func (p *fakeProvider) push(ev oauth2.Event) {
	if p.subscriber != nil {
		p.subscriber(ev)
	}
}

func newTestManager(t *testing.T) (*Manager, *backendmock.Backend, *fakeProvider, *dbmock.Db) {
	t.Helper()
	be := backendmock.New()
	provider := &fakeProvider{}
	store := dbmock.New()
	cfg := config.NewDefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(be, provider, store, config.NewProvider(cfg), logger)
	return m, be, provider, store
}

func TestLoginWithPasswordValid(t *testing.T) {
	m, be, _, store := newTestManager(t)
	be.Identifier = "alice"
	be.Secret = "s3cret"
	be.AuthRows = []backend.AuthRow{{
		UserID:       "user42",
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		AuthProvider: db.AuthProviderLocal,
	}}

	identity, err := m.LoginWithPassword(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("LoginWithPassword: %v", err)
	}
	if identity.ID != "user42" || identity.AuthProvider != db.AuthProviderLocal {
		t.Errorf("identity = %+v", identity)
	}
	if got := m.Current(); got.Identity == nil || got.Identity.ID != "user42" {
		t.Errorf("Current() = %+v", got)
	}

	stored, ok, err := store.Get(db.KeyCurrentUser)
	if err != nil || !ok {
		t.Fatalf("persisted copy missing: ok=%v err=%v", ok, err)
	}
	persisted, err := db.UnmarshalIdentity(stored)
	if err != nil {
		t.Fatalf("persisted copy corrupt: %v", err)
	}
	if persisted.ID != "user42" {
		t.Errorf("persisted id = %q, want user42", persisted.ID)
	}
}

func TestLoginWithPasswordInvalid(t *testing.T) {
	m, be, _, store := newTestManager(t)
	be.Identifier = "alice"
	be.Secret = "s3cret"
	be.AuthRows = []backend.AuthRow{{UserID: "user42", DisplayName: "Alice", AuthProvider: db.AuthProviderLocal}}

	_, err := m.LoginWithPassword(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
	if got := m.Current(); got.Identity != nil {
		t.Errorf("session changed on failed login: %+v", got)
	}
	if _, ok, _ := store.Get(db.KeyCurrentUser); ok {
		t.Error("persisted copy written on failed login")
	}
}

func TestLoginWithPasswordTransportError(t *testing.T) {
	m, be, _, _ := newTestManager(t)
	be.AuthErr = errors.New("connection refused")

	_, err := m.LoginWithPassword(context.Background(), "alice", "s3cret")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestLogoutClearsStateEvenWhenProviderFails(t *testing.T) {
	m, be, provider, store := newTestManager(t)
	be.Identifier = "alice"
	be.Secret = "s3cret"
	be.AuthRows = []backend.AuthRow{{UserID: "user42", DisplayName: "Alice", AuthProvider: db.AuthProviderLocal}}
	if _, err := m.LoginWithPassword(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	provider.signOutErr = errors.New("provider unreachable")
	m.Logout(context.Background())

	if got := m.Current(); got.Identity != nil {
		t.Errorf("identity not cleared: %+v", got)
	}
	if _, ok, _ := store.Get(db.KeyCurrentUser); ok {
		t.Error("persisted copy not removed")
	}
	if provider.signOutCalls != 1 {
		t.Errorf("signOutCalls = %d, want 1", provider.signOutCalls)
	}
}

func TestUpsertIdempotence(t *testing.T) {
	m, _, provider, _ := newTestManager(t)
	m.Resolve(context.Background())

	remote := &oauth2.RemoteSession{
		ProviderUserID: "google-123",
		Email:          "alice@example.com",
		Name:           "Alice",
	}
	provider.push(oauth2.Event{Kind: oauth2.EventSignedIn, Session: remote})
	first := m.Current().Identity
	if first == nil {
		t.Fatal("no identity after signed-in event")
	}

	provider.push(oauth2.Event{Kind: oauth2.EventSignedIn, Session: remote})
	second := m.Current().Identity
	if second == nil {
		t.Fatal("no identity after second signed-in event")
	}
	if *first != *second {
		t.Errorf("identities diverge: %+v vs %+v", first, second)
	}
}

func TestSignedOutAsymmetry(t *testing.T) {
	tests := []struct {
		name         string
		authProvider string
		wantCleared  bool
	}{
		{"local identity survives", db.AuthProviderLocal, false},
		{"google identity cleared", db.AuthProviderGoogle, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, provider, store := newTestManager(t)
			identity := &db.Identity{ID: "user1", DisplayName: "Alice", AuthProvider: tt.authProvider}
			value, err := db.MarshalIdentity(identity)
			if err != nil {
				t.Fatal(err)
			}
			if err := store.Set(db.KeyCurrentUser, value); err != nil {
				t.Fatal(err)
			}
			m.Resolve(context.Background())
			if m.Current().Identity == nil {
				t.Fatal("persisted identity not restored")
			}

			provider.push(oauth2.Event{Kind: oauth2.EventSignedOut})

			cleared := m.Current().Identity == nil
			if cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v", cleared, tt.wantCleared)
			}
			_, ok, _ := store.Get(db.KeyCurrentUser)
			if ok == tt.wantCleared {
				t.Errorf("persisted copy present = %v, want %v", ok, !tt.wantCleared)
			}
		})
	}
}

func TestResolvePersistedCopyWins(t *testing.T) {
	m, be, provider, store := newTestManager(t)
	identity := &db.Identity{ID: "persisted", DisplayName: "Alice", AuthProvider: db.AuthProviderGoogle}
	value, _ := db.MarshalIdentity(identity)
	if err := store.Set(db.KeyCurrentUser, value); err != nil {
		t.Fatal(err)
	}
	// An active provider session must not be consulted when a persisted
	// copy parses.
	provider.active = &oauth2.RemoteSession{ProviderUserID: "google-123", Email: "other@example.com"}

	m.Resolve(context.Background())

	got := m.Current()
	if got.Loading {
		t.Error("still loading after Resolve")
	}
	if got.Identity == nil || got.Identity.ID != "persisted" {
		t.Errorf("identity = %+v, want persisted copy", got.Identity)
	}
	if be.UpsertCalls != 0 {
		t.Errorf("upsert called %d times", be.UpsertCalls)
	}
}

func TestResolveActiveProviderSession(t *testing.T) {
	m, be, provider, store := newTestManager(t)
	provider.active = &oauth2.RemoteSession{
		ProviderUserID: "google-123",
		Email:          "alice@example.com",
		Name:           "Alice",
	}

	m.Resolve(context.Background())

	got := m.Current()
	if got.Loading {
		t.Error("still loading after Resolve")
	}
	if got.Identity == nil || got.Identity.AuthProvider != db.AuthProviderGoogle {
		t.Fatalf("identity = %+v", got.Identity)
	}
	if be.UpsertCalls != 1 {
		t.Errorf("upsert called %d times, want 1", be.UpsertCalls)
	}
	if _, ok, _ := store.Get(db.KeyCurrentUser); !ok {
		t.Error("synthesized identity not persisted")
	}
}

func TestResolveCorruptPersistedCopy(t *testing.T) {
	m, _, _, store := newTestManager(t)
	if err := store.Set(db.KeyCurrentUser, `"{not json`); err != nil {
		t.Fatal(err)
	}

	m.Resolve(context.Background())

	got := m.Current()
	if got.Loading {
		t.Error("still loading after Resolve")
	}
	if got.Identity != nil {
		t.Errorf("identity = %+v, want anonymous", got.Identity)
	}
	if _, ok, _ := store.Get(db.KeyCurrentUser); ok {
		t.Error("corrupt entry not removed")
	}
}

func TestResolveTerminatesOnProviderError(t *testing.T) {
	m, _, provider, _ := newTestManager(t)
	provider.activeErr = errors.New("provider down")

	m.Resolve(context.Background())

	got := m.Current()
	if got.Loading {
		t.Error("still loading after Resolve")
	}
	if got.Identity != nil {
		t.Errorf("identity = %+v, want anonymous", got.Identity)
	}
}

func TestLookupQuickCode(t *testing.T) {
	m, be, _, _ := newTestManager(t)
	be.QuickCodes["1234"] = "https://example.com/document1"

	url, ok, err := m.LookupQuickCode(context.Background(), "1234")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if url != "https://example.com/document1" {
		t.Errorf("url = %q", url)
	}

	_, ok, err = m.LookupQuickCode(context.Background(), "0000")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ok {
		t.Error("unknown code reported as found")
	}

	if got := m.Current(); got.Identity != nil {
		t.Error("quick code lookup touched session state")
	}
}

func TestLoginWithOAuth2InitiationFailure(t *testing.T) {
	m, _, provider, _ := newTestManager(t)
	provider.initErr = errors.New("redirect rejected")

	_, err := m.LoginWithOAuth2(context.Background(), "/")
	if !errors.Is(err, ErrOAuthInitiationFailed) {
		t.Fatalf("err = %v, want ErrOAuthInitiationFailed", err)
	}
}

func TestOnChangeNotifiesAndUnsubscribes(t *testing.T) {
	m, be, _, _ := newTestManager(t)
	be.Identifier = "alice"
	be.Secret = "s3cret"
	be.AuthRows = []backend.AuthRow{{UserID: "user42", DisplayName: "Alice", AuthProvider: db.AuthProviderLocal}}

	var states []State
	unsubscribe := m.OnChange(func(s State) { states = append(states, s) })

	if _, err := m.LoginWithPassword(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(states) != 1 || states[0].Identity == nil {
		t.Fatalf("states = %+v", states)
	}

	unsubscribe()
	m.Logout(context.Background())
	if len(states) != 1 {
		t.Errorf("notified after unsubscribe: %d states", len(states))
	}
}

func TestUpdateProfileKeepsUserID(t *testing.T) {
	m, be, _, store := newTestManager(t)
	be.Identifier = "alice"
	be.Secret = "s3cret"
	be.AuthRows = []backend.AuthRow{{
		UserID:       "user42",
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		AuthProvider: db.AuthProviderLocal,
	}}
	if _, err := m.LoginWithPassword(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatal(err)
	}

	identity, err := m.UpdateProfile(context.Background(), "Alice B.", "https://cdn.example/a.png")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if identity.ID != "user42" {
		t.Errorf("identity id changed by profile update: got %q, want user42", identity.ID)
	}
	if identity.DisplayName != "Alice B." {
		t.Errorf("display name = %q", identity.DisplayName)
	}
	if got := m.Current().Identity; got == nil || got.ID != "user42" {
		t.Errorf("Current() identity = %+v", got)
	}

	u, ok := be.UpdatedProfile("user42")
	if !ok {
		t.Fatal("update procedure not called for user42")
	}
	if u.DisplayName != "Alice B." || u.AvatarURL != "https://cdn.example/a.png" {
		t.Errorf("update input = %+v", u)
	}
	if be.UpsertCalls != 0 {
		t.Errorf("profile edit went through the create-or-update procedure: %d calls", be.UpsertCalls)
	}

	stored, ok, err := store.Get(db.KeyCurrentUser)
	if err != nil || !ok {
		t.Fatalf("persisted copy missing: ok=%v err=%v", ok, err)
	}
	persisted, err := db.UnmarshalIdentity(stored)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.ID != "user42" || persisted.DisplayName != "Alice B." {
		t.Errorf("persisted = %+v", persisted)
	}
}

func TestUpdateProfileKeepsCanonicalIDAfterOAuth2(t *testing.T) {
	m, be, provider, _ := newTestManager(t)
	m.Resolve(context.Background())

	provider.push(oauth2.Event{Kind: oauth2.EventSignedIn, Session: &oauth2.RemoteSession{
		ProviderUserID: "google-123",
		Email:          "alice@example.com",
		Name:           "Alice",
	}})
	signedIn := m.Current().Identity
	if signedIn == nil {
		t.Fatal("no identity after signed-in event")
	}

	updated, err := m.UpdateProfile(context.Background(), "Alice B.", "")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.ID != signedIn.ID {
		t.Errorf("identity id changed by profile update: got %q, want %q", updated.ID, signedIn.ID)
	}
	if be.UpsertCalls != 1 {
		t.Errorf("upsert calls = %d, want only the sign-in one", be.UpsertCalls)
	}
}

func TestUpdateProfileFailureLeavesSessionUntouched(t *testing.T) {
	m, be, _, _ := newTestManager(t)
	be.Identifier = "alice"
	be.Secret = "s3cret"
	be.AuthRows = []backend.AuthRow{{UserID: "user42", DisplayName: "Alice", AuthProvider: db.AuthProviderLocal}}
	if _, err := m.LoginWithPassword(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatal(err)
	}
	be.UpdateErr = errors.New("procedure error")

	_, err := m.UpdateProfile(context.Background(), "Mallory", "")
	if !errors.Is(err, ErrProfileUpdateFailed) {
		t.Fatalf("err = %v, want ErrProfileUpdateFailed", err)
	}
	if got := m.Current().Identity; got == nil || got.DisplayName != "Alice" {
		t.Errorf("identity mutated despite failed update: %+v", got)
	}
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	m.Resolve(context.Background())

	if _, err := m.UpdateProfile(context.Background(), "Alice", ""); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestUpsertFailureDoesNotAuthenticate(t *testing.T) {
	m, be, provider, _ := newTestManager(t)
	be.UpsertErr = errors.New("procedure error")
	m.Resolve(context.Background())

	provider.push(oauth2.Event{Kind: oauth2.EventSignedIn, Session: &oauth2.RemoteSession{
		ProviderUserID: "google-123",
		Email:          "alice@example.com",
	}})

	if got := m.Current(); got.Identity != nil {
		t.Errorf("identity set despite upsert failure: %+v", got.Identity)
	}
}
