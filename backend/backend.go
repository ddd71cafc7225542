// Package backend defines the contract with the hosted service: stored
// procedures for authentication and profile upsert, plus the per-user
// tables the screens read and write. The procedures themselves live on
// the service side and are external collaborators.
package backend

import (
	"context"
	"time"
)

// AuthRow is one row returned by the remote authenticate procedure.
type AuthRow struct {
	UserID       string
	Username     string
	Email        string
	DisplayName  string
	AvatarURL    string
	AuthProvider string
}

// Profile is the input of the remote create-or-update profile
// procedure. The procedure is idempotent: repeated calls with the same
// provider identity yield the same canonical user id.
type Profile struct {
	Email          string
	Username       string
	Secret         string
	DisplayName    string
	AvatarURL      string
	AuthProvider   string
	ProviderUserID string
}

type LedgerEntry struct {
	ID              string    `json:"id,omitempty"`
	UserID          string    `json:"-"`
	Type            string    `json:"type"` // "expense" or "income"
	Amount          float64   `json:"amount"`
	Description     string    `json:"description,omitempty"`
	AccountID       string    `json:"account_id,omitempty"`
	TransactionDate time.Time `json:"transaction_date"`
}

type DiaryEntry struct {
	ID      string    `json:"id,omitempty"`
	UserID  string    `json:"-"`
	Date    string    `json:"date"` // calendar day, "2006-01-02"
	Content string    `json:"content"`
	Created time.Time `json:"created_at,omitempty"`
	Updated time.Time `json:"updated_at,omitempty"`
}

type Document struct {
	ID      string    `json:"id,omitempty"`
	UserID  string    `json:"-"`
	Title   string    `json:"title"`
	Content string    `json:"content,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
	Updated time.Time `json:"updated_at,omitempty"`
}

// ProfileUpdate carries the optional fields of the remote update
// procedure. An empty field is sent as NULL and left unchanged
// server-side.
type ProfileUpdate struct {
	Email       string
	Username    string
	Secret      string
	DisplayName string
	AvatarURL   string
}

// Auth is what the session manager needs from the hosted service.
type Auth interface {
	// Authenticate calls the remote authenticate procedure. Zero rows
	// with a nil error means the credentials did not match.
	Authenticate(ctx context.Context, identifier, secret string) ([]AuthRow, error)

	// UpsertProfile calls the remote create-or-update procedure and
	// returns the canonical local user id.
	UpsertProfile(ctx context.Context, p Profile) (string, error)

	// UpdateProfile calls the remote update procedure for an existing
	// user. The user id never changes; only the fields set in u do.
	UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) error

	// QuickCodeURL resolves a quick code to its document URL. The bool
	// reports whether the code exists.
	QuickCodeURL(ctx context.Context, code string) (string, bool, error)
}

// Ledger covers the accounting screen's remote table.
type Ledger interface {
	ListLedgerEntries(ctx context.Context, userID string, limit int) ([]LedgerEntry, error)
	CreateLedgerEntry(ctx context.Context, e LedgerEntry) (*LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, userID, id string) error
}

// Diary covers the diary screen's remote table.
type Diary interface {
	ListDiaryEntries(ctx context.Context, userID string) ([]DiaryEntry, error)
	UpsertDiaryEntry(ctx context.Context, e DiaryEntry) (*DiaryEntry, error)
}

// Documents covers the document-links screen's remote table.
type Documents interface {
	ListDocuments(ctx context.Context, userID string) ([]Document, error)
	CreateDocument(ctx context.Context, d Document) (*Document, error)
	UpdateDocument(ctx context.Context, d Document) error
	DeleteDocument(ctx context.Context, userID, id string) error
}

// Backend combines all roles the application requires from the hosted
// service.
type Backend interface {
	Auth
	Ledger
	Diary
	Documents
}
