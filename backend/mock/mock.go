// Package mock provides an in-memory backend.Backend for tests.
package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/caasmo/daybook/backend"
)

type Backend struct {
	mu sync.Mutex

	// AuthRows is returned by Authenticate when the pair matches
	// Identifier/Secret. Anything else yields zero rows.
	Identifier string
	Secret     string
	AuthRows   []backend.AuthRow
	AuthErr    error

	// upserted maps "provider|providerUserID" to the canonical id, so
	// repeated upserts are idempotent like the real procedure.
	upserted    map[string]string
	nextID      int
	UpsertErr   error
	UpsertCalls int

	// updated records the last UpdateProfile input per user id.
	updated   map[string]backend.ProfileUpdate
	UpdateErr error

	QuickCodes map[string]string
	QuickErr   error

	ledger    []backend.LedgerEntry
	diary     map[string]backend.DiaryEntry // keyed by user|date
	documents map[string]backend.Document
}

var _ backend.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		upserted:   make(map[string]string),
		updated:    make(map[string]backend.ProfileUpdate),
		QuickCodes: make(map[string]string),
		diary:      make(map[string]backend.DiaryEntry),
		documents:  make(map[string]backend.Document),
	}
}

func (b *Backend) Authenticate(ctx context.Context, identifier, secret string) ([]backend.AuthRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.AuthErr != nil {
		return nil, b.AuthErr
	}
	if identifier == b.Identifier && secret == b.Secret {
		return b.AuthRows, nil
	}
	return nil, nil
}

func (b *Backend) UpsertProfile(ctx context.Context, p backend.Profile) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.UpsertCalls++
	if b.UpsertErr != nil {
		return "", b.UpsertErr
	}
	key := p.AuthProvider + "|" + p.ProviderUserID
	if id, ok := b.upserted[key]; ok {
		return id, nil
	}
	b.nextID++
	id := "user" + strconv.Itoa(b.nextID)
	b.upserted[key] = id
	return id, nil
}

func (b *Backend) UpdateProfile(ctx context.Context, userID string, u backend.ProfileUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.UpdateErr != nil {
		return b.UpdateErr
	}
	b.updated[userID] = u
	return nil
}

// UpdatedProfile returns the last UpdateProfile input recorded for
// userID.
func (b *Backend) UpdatedProfile(userID string) (backend.ProfileUpdate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.updated[userID]
	return u, ok
}

func (b *Backend) QuickCodeURL(ctx context.Context, code string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.QuickErr != nil {
		return "", false, b.QuickErr
	}
	url, ok := b.QuickCodes[code]
	return url, ok, nil
}

func (b *Backend) ListLedgerEntries(ctx context.Context, userID string, limit int) ([]backend.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backend.LedgerEntry
	for _, e := range b.ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (b *Backend) CreateLedgerEntry(ctx context.Context, e backend.LedgerEntry) (*backend.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	e.ID = "entry" + strconv.Itoa(b.nextID)
	b.ledger = append(b.ledger, e)
	return &e, nil
}

func (b *Backend) DeleteLedgerEntry(ctx context.Context, userID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.ledger {
		if e.ID == id && e.UserID == userID {
			b.ledger = append(b.ledger[:i], b.ledger[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("ledger entry %s not found", id)
}

func (b *Backend) ListDiaryEntries(ctx context.Context, userID string) ([]backend.DiaryEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backend.DiaryEntry
	for _, e := range b.diary {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (b *Backend) UpsertDiaryEntry(ctx context.Context, e backend.DiaryEntry) (*backend.DiaryEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := e.UserID + "|" + e.Date
	if old, ok := b.diary[key]; ok {
		e.ID = old.ID
	} else {
		b.nextID++
		e.ID = "diary" + strconv.Itoa(b.nextID)
	}
	b.diary[key] = e
	return &e, nil
}

func (b *Backend) ListDocuments(ctx context.Context, userID string) ([]backend.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backend.Document
	for _, d := range b.documents {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (b *Backend) CreateDocument(ctx context.Context, d backend.Document) (*backend.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	d.ID = "doc" + strconv.Itoa(b.nextID)
	b.documents[d.ID] = d
	return &d, nil
}

func (b *Backend) UpdateDocument(ctx context.Context, d backend.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	old, ok := b.documents[d.ID]
	if !ok || old.UserID != d.UserID {
		return fmt.Errorf("document %s not found", d.ID)
	}
	b.documents[d.ID] = d
	return nil
}

func (b *Backend) DeleteDocument(ctx context.Context, userID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	old, ok := b.documents[id]
	if !ok || old.UserID != userID {
		return fmt.Errorf("document %s not found", id)
	}
	delete(b.documents, id)
	return nil
}
