package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/duetlabs/duet/internal/apperr"
)

// CredentialRow is the persisted form of the singleton credential record.
type CredentialRow struct {
	AuthorPIN   string
	ViewerPIN   string
	ViewerLabel string
}

// LoadCredentials returns the singleton credential row.
// Returns apperr.ErrNotFound when the store has never been seeded.
func (db *DB) LoadCredentials() (*CredentialRow, error) {
	var row CredentialRow
	err := db.conn.QueryRow(
		`SELECT author_pin, viewer_pin, viewer_label FROM credentials WHERE id = 1`,
	).Scan(&row.AuthorPIN, &row.ViewerPIN, &row.ViewerLabel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load credentials: %w", err)
	}
	return &row, nil
}

// SaveCredentials replaces the singleton credential row in a single
// statement, so a reader sees either the old row or the new one in full.
func (db *DB) SaveCredentials(row CredentialRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO credentials (id, author_pin, viewer_pin, viewer_label, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author_pin   = excluded.author_pin,
			viewer_pin   = excluded.viewer_pin,
			viewer_label = excluded.viewer_label,
			updated_at   = excluded.updated_at
	`, row.AuthorPIN, row.ViewerPIN, row.ViewerLabel, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save credentials: %w", err)
	}
	return nil
}
