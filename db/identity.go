package db

import (
	"encoding/json"
	"fmt"
)

const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

// Identity is the authenticated principal resolved by the session
// manager. Exactly one of a local credential pair or a third-party
// OAuth2 session produced it; AuthProvider records which.
//
// The JSON field names match the hosted service's serialized form, so a
// persisted copy written by any client of the service parses here.
type Identity struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	Username     string `json:"username,omitempty"`
	DisplayName  string `json:"displayName"`
	AvatarURL    string `json:"avatar,omitempty"`
	AuthProvider string `json:"authProvider"`
}

// Valid reports whether the identity carries the fields every resolved
// principal must have.
func (i *Identity) Valid() error {
	if i.ID == "" {
		return fmt.Errorf("identity missing id")
	}
	if i.DisplayName == "" {
		return fmt.Errorf("identity missing display name")
	}
	if i.AuthProvider == "" {
		return fmt.Errorf("identity missing auth provider")
	}
	return nil
}

// MarshalIdentity serializes an identity for the local store.
func MarshalIdentity(i *Identity) (string, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity: %w", err)
	}
	return string(data), nil
}

// UnmarshalIdentity parses a stored identity. A parse or validation
// failure means the stored copy is corrupt and must be discarded.
func UnmarshalIdentity(value string) (*Identity, error) {
	var i Identity
	if err := json.Unmarshal([]byte(value), &i); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	if err := i.Valid(); err != nil {
		return nil, fmt.Errorf("stored identity invalid: %w", err)
	}
	return &i, nil
}
