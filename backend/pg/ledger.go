package pg

import (
	"context"
	"fmt"

	"github.com/caasmo/daybook/backend"
)

func (p *Pg) ListLedgerEntries(ctx context.Context, userID string, limit int) ([]backend.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, type, amount, description, account_id, transaction_date
		FROM accounting_entries
		WHERE user_id = $1
		ORDER BY transaction_date DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []backend.LedgerEntry
	for rows.Next() {
		e := backend.LedgerEntry{UserID: userID}
		var description, accountID *string
		if err := rows.Scan(&e.ID, &e.Type, &e.Amount, &description, &accountID, &e.TransactionDate); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		if description != nil {
			e.Description = *description
		}
		if accountID != nil {
			e.AccountID = *accountID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Pg) CreateLedgerEntry(ctx context.Context, e backend.LedgerEntry) (*backend.LedgerEntry, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO accounting_entries (user_id, type, amount, description, account_id, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.UserID, e.Type, e.Amount, nullable(e.Description), nullable(e.AccountID), e.TransactionDate,
	).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("creating ledger entry: %w", err)
	}
	return &e, nil
}

func (p *Pg) DeleteLedgerEntry(ctx context.Context, userID, id string) error {
	// user_id in the predicate keeps one user from deleting another's rows.
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM accounting_entries WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("deleting ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry %s not found", id)
	}
	return nil
}
