package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/crypto"
	"github.com/caasmo/daybook/db"
)

// kvKeyToken is where the google token lives in the local store, so an
// active provider session survives process restarts.
const kvKeyToken = "oauth2_google_token"

var ErrEmailNotVerified = errors.New("google email not verified")

// Google implements Provider against Google's OAuth2 endpoints.
type Google struct {
	configProvider *config.Provider
	store          db.DbKV
	logger         *slog.Logger

	mu          sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
}

var _ Provider = (*Google)(nil)

func NewGoogle(configProvider *config.Provider, store db.DbKV, logger *slog.Logger) *Google {
	return &Google{
		configProvider: configProvider,
		store:          store,
		logger:         logger.With("oauth2_provider", config.OAuth2ProviderGoogle),
		subscribers:    make(map[int]func(Event)),
	}
}

func (g *Google) Name() string {
	return config.OAuth2ProviderGoogle
}

func (g *Google) oauth2Config(redirectURL string) (*oauth2.Config, error) {
	p, ok := g.configProvider.Get().OAuth2Providers[config.OAuth2ProviderGoogle]
	if !ok {
		return nil, fmt.Errorf("google provider not configured")
	}
	if p.ClientID == "" || p.ClientSecret == "" {
		return nil, fmt.Errorf("google provider missing client credentials")
	}
	if redirectURL == "" {
		redirectURL = p.RedirectURL
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       p.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: p.TokenURL,
		},
	}, nil
}

// ActiveSession restores the stored token, refreshing it through the
// token source if expired, and rebuilds the remote session from the
// userinfo endpoint. A missing or unusable token is not an error, just
// no session.
func (g *Google) ActiveSession(ctx context.Context) (*RemoteSession, error) {
	value, found, err := g.store.Get(kvKeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored token: %w", err)
	}
	if !found {
		return nil, nil
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(value), &token); err != nil {
		g.logger.Warn("stored google token is corrupt, discarding", "error", err)
		if err := g.store.Remove(kvKeyToken); err != nil {
			g.logger.Error("failed to remove corrupt token", "error", err)
		}
		return nil, nil
	}

	cfg, err := g.oauth2Config("")
	if err != nil {
		return nil, err
	}

	// TokenSource refreshes transparently when a refresh token exists.
	fresh, err := cfg.TokenSource(ctx, &token).Token()
	if err != nil {
		g.logger.Info("stored google token no longer usable", "error", err)
		if err := g.store.Remove(kvKeyToken); err != nil {
			g.logger.Error("failed to remove stale token", "error", err)
		}
		return nil, nil
	}

	session, err := g.fetchRemoteSession(ctx, cfg, fresh)
	if err != nil {
		return nil, err
	}

	if fresh.AccessToken != token.AccessToken {
		g.storeToken(fresh)
	}
	return session, nil
}

func (g *Google) InitiateSignIn(ctx context.Context, redirectTarget string) (*SignInAttempt, error) {
	cfg, err := g.oauth2Config(redirectTarget)
	if err != nil {
		return nil, err
	}

	state := crypto.Oauth2State()
	verifier := crypto.Oauth2CodeVerifier()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("code_challenge", crypto.S256Challenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	return &SignInAttempt{
		AuthURL:      authURL,
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

func (g *Google) CompleteSignIn(ctx context.Context, code, codeVerifier string) (*RemoteSession, error) {
	cfg, err := g.oauth2Config("")
	if err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	session, err := g.fetchRemoteSession(ctx, cfg, token)
	if err != nil {
		return nil, err
	}

	g.storeToken(token)
	g.emit(Event{Kind: EventSignedIn, Session: session})
	return session, nil
}

func (g *Google) SignOut(ctx context.Context) error {
	if err := g.store.Remove(kvKeyToken); err != nil {
		return fmt.Errorf("failed to remove stored token: %w", err)
	}
	g.emit(Event{Kind: EventSignedOut})
	return nil
}

func (g *Google) Subscribe(fn func(Event)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSubID
	g.nextSubID++
	g.subscribers[id] = fn

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subscribers, id)
	}
}

func (g *Google) emit(ev Event) {
	g.mu.Lock()
	fns := make([]func(Event), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (g *Google) storeToken(token *oauth2.Token) {
	data, err := json.Marshal(token)
	if err != nil {
		g.logger.Error("failed to marshal google token", "error", err)
		return
	}
	if err := g.store.Set(kvKeyToken, string(data)); err != nil {
		g.logger.Error("failed to store google token", "error", err)
	}
}

func (g *Google) fetchRemoteSession(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*RemoteSession, error) {
	p := g.configProvider.Get().OAuth2Providers[config.OAuth2ProviderGoogle]

	client := cfg.Client(ctx, token)
	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	session, err := sessionFromUserInfo(resp, token)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// sessionFromUserInfo decodes Google's OpenID Connect userinfo payload.
func sessionFromUserInfo(resp *http.Response, token *oauth2.Token) (*RemoteSession, error) {
	extracted := struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}{}

	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}

	if extracted.Sub == "" {
		return nil, fmt.Errorf("google user info missing subject")
	}
	if !extracted.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &RemoteSession{
		ProviderUserID: extracted.Sub,
		Email:          extracted.Email,
		Name:           extracted.Name,
		AvatarURL:      extracted.Picture,
		Token:          token,
	}, nil
}
