// Package session owns the current authenticated identity. It
// reconciles three identity sources, the persisted local copy, the
// third-party OAuth2 provider and explicit credential login, into one
// consistent Identity and notifies observers of every change.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/caasmo/daybook/backend"
	"github.com/caasmo/daybook/config"
	"github.com/caasmo/daybook/db"
	"github.com/caasmo/daybook/oauth2"
)

var (
	// ErrAuthenticationFailed covers bad credentials and zero rows from
	// the authenticate procedure.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrOAuthInitiationFailed means the provider rejected the redirect
	// setup itself, not the eventual login outcome.
	ErrOAuthInitiationFailed = errors.New("oauth2 initiation failed")

	// ErrProfileUpsertFailed is logged during OAuth2 flows, never
	// returned to a caller that already saw a provider-side success.
	ErrProfileUpsertFailed = errors.New("profile upsert failed")

	// ErrProfileUpdateFailed is returned when the remote update
	// procedure rejects a profile edit.
	ErrProfileUpdateFailed = errors.New("profile update failed")

	// ErrPersistenceCorrupt marks a stored identity that fails to
	// parse. The entry is removed and treated as absence.
	ErrPersistenceCorrupt = errors.New("persisted identity corrupt")
)

// State is the snapshot handed to observers: at most one identity plus
// a flag for "startup resolution still in flight".
type State struct {
	Identity *db.Identity
	Loading  bool
}

// Authenticated reports whether an identity is resolved.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Manager is the single writer of session state. Consumers hold a
// read-only view through Current and OnChange plus the operation entry
// points; nothing else may mutate the identity.
type Manager struct {
	auth           backend.Auth
	provider       oauth2.Provider
	store          db.DbKV
	configProvider *config.Provider
	logger         *slog.Logger

	mu       sync.Mutex
	identity *db.Identity
	loading  bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	unsubscribe func()
}

func NewManager(auth backend.Auth, provider oauth2.Provider, store db.DbKV, configProvider *config.Provider, logger *slog.Logger) *Manager {
	return &Manager{
		auth:           auth,
		provider:       provider,
		store:          store,
		configProvider: configProvider,
		logger:         logger,
		loading:        true,
		subs:           make(map[int]func(State)),
	}
}

// Current returns a snapshot of the session state.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Identity: m.identity, Loading: m.loading}
}

// OnChange registers fn to be called synchronously on every session
// mutation. The returned function removes the subscription.
func (m *Manager) OnChange(fn func(State)) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// Resolve runs the startup resolution sequence: the persisted copy
// wins if present, otherwise the provider is asked for an active
// remote session, which is upserted server-side and persisted. Every
// path ends with Loading false exactly once, remote failures degrade
// to anonymous. Resolve also establishes the provider event
// subscription for the lifetime of the manager.
func (m *Manager) Resolve(ctx context.Context) {
	defer m.finishLoading()

	stored, ok, err := m.store.Get(db.KeyCurrentUser)
	if err != nil {
		m.logger.Error("session: reading persisted identity", "err", err)
	}
	if ok && err == nil {
		identity, err := db.UnmarshalIdentity(stored)
		if err != nil {
			m.logger.Warn("session: discarding persisted identity",
				"err", errors.Join(ErrPersistenceCorrupt, err))
			if err := m.store.Remove(db.KeyCurrentUser); err != nil {
				m.logger.Error("session: removing corrupt identity", "err", err)
			}
		} else {
			m.setIdentity(identity)
			m.subscribeProvider()
			return
		}
	}

	callCtx, cancel := m.callContext(ctx)
	defer cancel()
	remote, err := m.provider.ActiveSession(callCtx)
	if err != nil {
		m.logger.Error("session: checking provider session", "provider", m.provider.Name(), "err", err)
		m.subscribeProvider()
		return
	}
	if remote != nil {
		if err := m.upsertAndSet(callCtx, remote); err != nil {
			m.logger.Warn("session: resolving provider session",
				"err", errors.Join(ErrProfileUpsertFailed, err))
		}
	}
	m.subscribeProvider()
}

// Close drops the provider event subscription.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// LoginWithPassword sends the pair to the remote authenticate
// procedure. Zero rows and transport errors both fail with
// ErrAuthenticationFailed. On success the session transitions to
// authenticated and the identity is persisted.
func (m *Manager) LoginWithPassword(ctx context.Context, identifier, secret string) (*db.Identity, error) {
	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	rows, err := m.auth.Authenticate(callCtx, identifier, secret)
	if err != nil {
		m.logger.Debug("session: authenticate call failed", "err", err)
		return nil, errors.Join(ErrAuthenticationFailed, err)
	}
	if len(rows) == 0 {
		return nil, ErrAuthenticationFailed
	}

	row := rows[0]
	identity := &db.Identity{
		ID:           row.UserID,
		Email:        row.Email,
		Username:     row.Username,
		DisplayName:  row.DisplayName,
		AvatarURL:    row.AvatarURL,
		AuthProvider: row.AuthProvider,
	}
	if identity.AuthProvider == "" {
		identity.AuthProvider = db.AuthProviderLocal
	}
	m.persist(identity)
	m.setIdentity(identity)
	return identity, nil
}

// LoginWithOAuth2 initiates the redirect handshake. Completion arrives
// later through the provider event subscription, never through this
// call's return value.
func (m *Manager) LoginWithOAuth2(ctx context.Context, redirectTarget string) (*oauth2.SignInAttempt, error) {
	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	attempt, err := m.provider.InitiateSignIn(callCtx, redirectTarget)
	if err != nil {
		return nil, errors.Join(ErrOAuthInitiationFailed, err)
	}
	return attempt, nil
}

// LookupQuickCode resolves a quick code to its document URL with
// exactly one remote read. It never touches session state.
func (m *Manager) LookupQuickCode(ctx context.Context, code string) (string, bool, error) {
	callCtx, cancel := m.callContext(ctx)
	defer cancel()
	return m.auth.QuickCodeURL(callCtx, code)
}

// UpdateProfile pushes new presentation fields through the remote
// update procedure, keyed by the existing user id, and mirrors them
// into the session. The id is stable across edits: the create-or-update
// procedure is only for sign-in, where the identity is keyed by the
// provider, not by the canonical id. It requires an authenticated
// session.
func (m *Manager) UpdateProfile(ctx context.Context, displayName, avatarURL string) (*db.Identity, error) {
	m.mu.Lock()
	current := m.identity
	m.mu.Unlock()
	if current == nil {
		return nil, ErrAuthenticationFailed
	}

	callCtx, cancel := m.callContext(ctx)
	defer cancel()
	err := m.auth.UpdateProfile(callCtx, current.ID, backend.ProfileUpdate{
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	})
	if err != nil {
		return nil, errors.Join(ErrProfileUpdateFailed, err)
	}

	identity := &db.Identity{
		ID:           current.ID,
		Email:        current.Email,
		Username:     current.Username,
		DisplayName:  displayName,
		AvatarURL:    avatarURL,
		AuthProvider: current.AuthProvider,
	}
	m.persist(identity)
	m.setIdentity(identity)
	return identity, nil
}

// Logout clears the session and the persisted copy first, then
// requests provider sign-out best-effort. A failing remote call is
// logged and swallowed: local sign-out is unconditionally effective.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Remove(db.KeyCurrentUser); err != nil {
		m.logger.Error("session: removing persisted identity", "err", err)
	}
	m.setIdentity(nil)

	callCtx, cancel := m.callContext(ctx)
	defer cancel()
	if err := m.provider.SignOut(callCtx); err != nil {
		m.logger.Warn("session: provider sign-out failed", "provider", m.provider.Name(), "err", err)
	}
}

func (m *Manager) subscribeProvider() {
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = m.provider.Subscribe(m.handleProviderEvent)
}

func (m *Manager) handleProviderEvent(ev oauth2.Event) {
	switch ev.Kind {
	case oauth2.EventSignedIn:
		if ev.Session == nil {
			return
		}
		ctx, cancel := m.callContext(context.Background())
		defer cancel()
		// A later signed-in event always re-upserts and replaces the
		// current identity, even when already authenticated.
		if err := m.upsertAndSet(ctx, ev.Session); err != nil {
			m.logger.Warn("session: handling signed-in event",
				"err", errors.Join(ErrProfileUpsertFailed, err))
		}
	case oauth2.EventSignedOut:
		m.mu.Lock()
		identity := m.identity
		m.mu.Unlock()
		// Local-provider identities survive a provider sign-out: the
		// local session is independent of the OAuth2 provider's.
		if identity == nil || identity.AuthProvider != db.AuthProviderGoogle {
			return
		}
		if err := m.store.Remove(db.KeyCurrentUser); err != nil {
			m.logger.Error("session: removing persisted identity", "err", err)
		}
		m.setIdentity(nil)
	}
}

// upsertAndSet runs the shared path of startup resolution and the
// signed-in event handler: call the idempotent create-or-update
// procedure, build the identity around the canonical user id, persist,
// set.
func (m *Manager) upsertAndSet(ctx context.Context, remote *oauth2.RemoteSession) error {
	userID, err := m.auth.UpsertProfile(ctx, backend.Profile{
		Email:          remote.Email,
		DisplayName:    remote.DisplayName(),
		AvatarURL:      remote.AvatarURL,
		AuthProvider:   db.AuthProviderGoogle,
		ProviderUserID: remote.ProviderUserID,
	})
	if err != nil {
		return err
	}
	identity := &db.Identity{
		ID:           userID,
		Email:        remote.Email,
		DisplayName:  remote.DisplayName(),
		AvatarURL:    remote.AvatarURL,
		AuthProvider: db.AuthProviderGoogle,
	}
	m.persist(identity)
	m.setIdentity(identity)
	return nil
}

// persist mirrors the identity to the local store. The pair is cached,
// not transactional: a store failure is logged and the in-memory state
// proceeds.
func (m *Manager) persist(identity *db.Identity) {
	value, err := db.MarshalIdentity(identity)
	if err != nil {
		m.logger.Error("session: marshaling identity", "err", err)
		return
	}
	if err := m.store.Set(db.KeyCurrentUser, value); err != nil {
		m.logger.Error("session: persisting identity", "err", err)
	}
}

func (m *Manager) setIdentity(identity *db.Identity) {
	m.mu.Lock()
	m.identity = identity
	state := State{Identity: m.identity, Loading: m.loading}
	m.mu.Unlock()
	m.notify(state)
}

func (m *Manager) finishLoading() {
	m.mu.Lock()
	if !m.loading {
		m.mu.Unlock()
		return
	}
	m.loading = false
	state := State{Identity: m.identity, Loading: false}
	m.mu.Unlock()
	m.notify(state)
}

func (m *Manager) notify(state State) {
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

func (m *Manager) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := m.configProvider.Get().Session.CallTimeout.Duration
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
