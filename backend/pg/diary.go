package pg

import (
	"context"
	"fmt"

	"github.com/caasmo/daybook/backend"
)

func (p *Pg) ListDiaryEntries(ctx context.Context, userID string) ([]backend.DiaryEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, date, content, created_at, updated_at
		FROM diary_entries
		WHERE user_id = $1
		ORDER BY date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing diary entries: %w", err)
	}
	defer rows.Close()

	var entries []backend.DiaryEntry
	for rows.Next() {
		e := backend.DiaryEntry{UserID: userID}
		if err := rows.Scan(&e.ID, &e.Date, &e.Content, &e.Created, &e.Updated); err != nil {
			return nil, fmt.Errorf("scanning diary entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertDiaryEntry creates the day's entry or replaces its content.
// One entry per user and day, matching the diary screen semantics.
func (p *Pg) UpsertDiaryEntry(ctx context.Context, e backend.DiaryEntry) (*backend.DiaryEntry, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO diary_entries (user_id, date, content, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id, date) DO UPDATE SET
			content = excluded.content,
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		e.UserID, e.Date, e.Content,
	).Scan(&e.ID, &e.Created, &e.Updated)
	if err != nil {
		return nil, fmt.Errorf("upserting diary entry: %w", err)
	}
	return &e, nil
}
