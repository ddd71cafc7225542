package pg

import (
	"context"
	"fmt"

	"github.com/caasmo/daybook/backend"
)

func (p *Pg) ListDocuments(ctx context.Context, userID string) ([]backend.Document, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, title, content, tags, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []backend.Document
	for rows.Next() {
		d := backend.Document{UserID: userID}
		var content *string
		if err := rows.Scan(&d.ID, &d.Title, &content, &d.Tags, &d.Updated); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if content != nil {
			d.Content = *content
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (p *Pg) CreateDocument(ctx context.Context, d backend.Document) (*backend.Document, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO documents (user_id, title, content, tags, updated_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, updated_at`,
		d.UserID, d.Title, nullable(d.Content), d.Tags,
	).Scan(&d.ID, &d.Updated)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return &d, nil
}

func (p *Pg) UpdateDocument(ctx context.Context, d backend.Document) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE documents SET
			title = $1,
			content = $2,
			tags = $3,
			updated_at = now()
		WHERE id = $4 AND user_id = $5`,
		d.Title, nullable(d.Content), d.Tags, d.ID, d.UserID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s not found", d.ID)
	}
	return nil
}

func (p *Pg) DeleteDocument(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}
