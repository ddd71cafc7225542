package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"

	"github.com/caasmo/daybook/backend"
)

// Authenticate invokes the remote authenticate procedure. The procedure
// returns zero rows for unknown or mismatched credentials; that is not
// an error here, the caller decides what zero rows means.
func (p *Pg) Authenticate(ctx context.Context, identifier, secret string) ([]backend.AuthRow, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT user_id, username, email, display_name, avatar, auth_provider
		FROM authenticate_user($1, $2)`,
		identifier, secret)
	if err != nil {
		return nil, fmt.Errorf("authenticate procedure failed: %w", err)
	}
	defer rows.Close()

	var result []backend.AuthRow
	for rows.Next() {
		var r backend.AuthRow
		var username, email, avatar *string
		if err := rows.Scan(&r.UserID, &username, &email, &r.DisplayName, &avatar, &r.AuthProvider); err != nil {
			return nil, fmt.Errorf("scanning authenticate row: %w", err)
		}
		if username != nil {
			r.Username = *username
		}
		if email != nil {
			r.Email = *email
		}
		if avatar != nil {
			r.AvatarURL = *avatar
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading authenticate rows: %w", err)
	}

	return result, nil
}

// UpsertProfile invokes the remote create-or-update profile procedure.
// The procedure is idempotent, so transient failures are retried with
// exponential backoff within the caller's context.
func (p *Pg) UpsertProfile(ctx context.Context, profile backend.Profile) (string, error) {
	cfg := p.configProvider.Get().Backend

	var userID string
	operation := func() error {
		err := p.pool.QueryRow(ctx,
			`SELECT create_or_update_user_profile($1, $2, $3, $4, $5, $6, $7)`,
			nullable(profile.Email),
			nullable(profile.Username),
			nullable(profile.Secret),
			profile.DisplayName,
			nullable(profile.AvatarURL),
			profile.AuthProvider,
			nullable(profile.ProviderUserID),
		).Scan(&userID)
		if err != nil {
			p.logger.Warn("profile upsert attempt failed", "error", err)
			return err
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.UpsertInterval.Duration
	policy := backoff.WithContext(backoff.WithMaxRetries(b, cfg.UpsertMaxRetry), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("profile upsert failed: %w", err)
	}
	if userID == "" {
		return "", fmt.Errorf("profile upsert returned empty user id")
	}
	return userID, nil
}

// UpdateProfile invokes the remote update procedure for an existing
// user. Unlike the create-or-update path this is keyed by the user id
// itself, so the id can never change. NULL fields are left untouched
// server-side.
func (p *Pg) UpdateProfile(ctx context.Context, userID string, u backend.ProfileUpdate) error {
	_, err := p.pool.Exec(ctx,
		`SELECT update_user_profile($1, $2, $3, $4, $5, $6)`,
		userID,
		nullable(u.Email),
		nullable(u.Username),
		nullable(u.Secret),
		nullable(u.DisplayName),
		nullable(u.AvatarURL),
	)
	if err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}
	return nil
}

func (p *Pg) QuickCodeURL(ctx context.Context, code string) (string, bool, error) {
	var url string
	err := p.pool.QueryRow(ctx,
		`SELECT document_url FROM quick_codes WHERE code = $1`,
		code).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("quick code lookup failed: %w", err)
	}
	return url, true, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
