package oauth2

import (
	"context"

	"golang.org/x/oauth2"
)

// RemoteSession is an active session on the third-party provider's
// side: the token plus the profile fields the upsert contract needs.
type RemoteSession struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Token          *oauth2.Token
}

// DisplayName returns the presentation name for the session, falling
// back to the email when the provider sent no name.
func (s *RemoteSession) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

type EventKind int

const (
	EventSignedIn EventKind = iota
	EventSignedOut
)

// Event is pushed to subscribers when the provider-side session
// changes. Session is set only for EventSignedIn.
type Event struct {
	Kind    EventKind
	Session *RemoteSession
}

// SignInAttempt holds what the HTTP layer needs to carry a redirect
// handshake across the round trip to the provider.
type SignInAttempt struct {
	AuthURL      string
	State        string
	CodeVerifier string
}

// Provider is the third-party identity provider contract consumed by
// the session manager.
//
// InitiateSignIn only sets up the redirect; completion arrives through
// the event subscription after CompleteSignIn runs in the callback
// handler, never through InitiateSignIn's return value.
type Provider interface {
	Name() string

	// ActiveSession returns the provider session that is still valid
	// from a previous sign-in, or nil when there is none.
	ActiveSession(ctx context.Context) (*RemoteSession, error)

	InitiateSignIn(ctx context.Context, redirectTarget string) (*SignInAttempt, error)

	// CompleteSignIn exchanges the callback code, stores the provider
	// session and emits EventSignedIn.
	CompleteSignIn(ctx context.Context, code, codeVerifier string) (*RemoteSession, error)

	// SignOut discards the provider session and emits EventSignedOut.
	SignOut(ctx context.Context) error

	// Subscribe registers fn for session events. Events are delivered
	// synchronously from the goroutine that caused them. The returned
	// function removes the subscription.
	Subscribe(fn func(Event)) (unsubscribe func())
}
