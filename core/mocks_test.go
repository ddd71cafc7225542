package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gorilla/securecookie"

	backendmock "github.com/caasmo/daybook/backend/mock"
	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/crypto"
	dbmock "github.com/caasmo/daybook/db/mock"
	"github.com/caasmo/daybook/oauth2"
	"github.com/caasmo/daybook/router/servemux"
	"github.com/caasmo/daybook/session"
)

// fakeProvider is a scriptable oauth2.Provider for handler tests.
type fakeProvider struct {
	completeSession *oauth2.RemoteSession
	completeErr     error
	initErr         error
	signOutErr      error
	subscriber      func(oauth2.Event)
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) ActiveSession(ctx context.Context) (*oauth2.RemoteSession, error) {
	return nil, nil
}

func (p *fakeProvider) InitiateSignIn(ctx context.Context, redirectTarget string) (*oauth2.SignInAttempt, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	return &oauth2.SignInAttempt{
		AuthURL:      "https://accounts.example/auth?state=teststate",
		State:        "teststate",
		CodeVerifier: "testverifier",
	}, nil
}

func (p *fakeProvider) CompleteSignIn(ctx context.Context, code, codeVerifier string) (*oauth2.RemoteSession, error) {
	if p.completeErr != nil {
		return nil, p.completeErr
	}
	if p.completeSession == nil {
		return nil, errors.New("no session scripted")
	}
	if p.subscriber != nil {
		p.subscriber(oauth2.Event{Kind: oauth2.EventSignedIn, Session: p.completeSession})
	}
	return p.completeSession, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	if p.subscriber != nil && p.signOutErr == nil {
		p.subscriber(oauth2.Event{Kind: oauth2.EventSignedOut})
	}
	return p.signOutErr
}

func (p *fakeProvider) Subscribe(fn func(oauth2.Event)) func() {
	p.subscriber = fn
	return func() { p.subscriber = nil }
}

// newTestApp wires an App over in-memory collaborators.
func newTestApp(t *testing.T) (*App, *backendmock.Backend, *fakeProvider, *dbmock.Db) {
	t.Helper()

	be := backendmock.New()
	provider := &fakeProvider{}
	store := dbmock.New()
	cfg := config.NewDefaultConfig()
	configProvider := config.NewProvider(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	manager := session.NewManager(be, provider, store, configProvider, logger)
	manager.Resolve(context.Background())

	a := &App{}
	a.SetConfigProvider(configProvider)
	a.SetLogger(logger)
	a.SetSession(manager)
	a.SetBackend(be)
	a.SetDbLocal(store)
	a.SetProvider(provider)
	a.SetRouter(servemux.New())
	a.SetValidator(NewValidator())
	a.SetAuthenticator(NewDefaultAuthenticator(manager, logger, configProvider))
	hashKey, blockKey, err := crypto.NewCookieKeys(cfg.Jwt.AuthSecret)
	if err != nil {
		t.Fatal(err)
	}
	a.SetStateCodec(securecookie.New(hashKey, blockKey))

	return a, be, provider, store
}
