package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/duetlabs/duet/internal/apperr"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	ID        int64
	Content   string
	Author    string
	CreatedAt time.Time
}

// InsertEntry appends a new entry and returns its assigned ID.
func (db *DB) InsertEntry(content, author string, createdAt time.Time) (int64, error) {
	res, err := db.conn.Exec(
		`INSERT INTO entries (content, created_at, author) VALUES (?, ?, ?)`,
		content, createdAt.UTC(), author,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, nil
}

// GetEntry returns a single entry by ID.
func (db *DB) GetEntry(id int64) (*EntryRow, error) {
	var e EntryRow
	err := db.conn.QueryRow(
		`SELECT id, content, created_at, author FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.Content, &e.CreatedAt, &e.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get entry: %w", err)
	}
	return &e, nil
}

// ListEntries returns entries newest first, with optional pagination and an
// optional case-insensitive substring filter on content. The second return
// value is the total number of matching rows, ignoring pagination.
func (db *DB) ListEntries(limit, offset int, filter string) ([]EntryRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if filter != "" {
		where = ` WHERE content LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter)+"%")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count entries: %w", err)
	}

	query := `SELECT id, content, created_at, author FROM entries` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		var e EntryRow
		if err := rows.Scan(&e.ID, &e.Content, &e.CreatedAt, &e.Author); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// UpdateEntry replaces the content of an existing entry.
func (db *DB) UpdateEntry(id int64, content string) error {
	res, err := db.conn.Exec(`UPDATE entries SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("store: update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteEntry removes an entry.
func (db *DB) DeleteEntry(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// escapeLike escapes the LIKE wildcards so user filters match literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
