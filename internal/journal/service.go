// Package journal coordinates entry persistence and live update events.
package journal

import (
	"context"
	"time"

	"github.com/duetlabs/duet/internal/store"
)

// AuthorName is the author attribution recorded on every entry. Entries are
// only ever written by the author role.
const AuthorName = "you"

// Entry is the full representation of a journal entry.
type Entry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher receives entry change notifications. A nil Publisher disables
// events.
type Publisher interface {
	PublishEntryEvent(kind string, id int64)
}

// Service coordinates store operations for the API, importer, and MCP
// layers.
type Service struct {
	db     *store.DB
	events Publisher
	now    func() time.Time
}

// NewService creates a journal service. events may be nil.
func NewService(db *store.DB, events Publisher) *Service {
	return &Service{db: db, events: events, now: time.Now}
}

// Add appends a new entry.
func (s *Service) Add(_ context.Context, content string) (*Entry, error) {
	createdAt := s.now().UTC()
	id, err := s.db.InsertEntry(content, AuthorName, createdAt)
	if err != nil {
		return nil, err
	}
	s.publish("created", id)
	return &Entry{ID: id, Content: content, Author: AuthorName, CreatedAt: createdAt}, nil
}

// Get returns a single entry by ID.
func (s *Service) Get(_ context.Context, id int64) (*Entry, error) {
	row, err := s.db.GetEntry(id)
	if err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

// List returns entries newest first with the total match count.
func (s *Service) List(_ context.Context, limit, offset int, filter string) ([]Entry, int, error) {
	rows, total, err := s.db.ListEntries(limit, offset, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Entry, len(rows))
	for i := range rows {
		out[i] = *fromRow(&rows[i])
	}
	return out, total, nil
}

// Update replaces an entry's content.
func (s *Service) Update(ctx context.Context, id int64, content string) (*Entry, error) {
	if err := s.db.UpdateEntry(id, content); err != nil {
		return nil, err
	}
	s.publish("updated", id)
	return s.Get(ctx, id)
}

// Delete removes an entry.
func (s *Service) Delete(_ context.Context, id int64) error {
	if err := s.db.DeleteEntry(id); err != nil {
		return err
	}
	s.publish("deleted", id)
	return nil
}

func (s *Service) publish(kind string, id int64) {
	if s.events != nil {
		s.events.PublishEntryEvent(kind, id)
	}
}

func fromRow(r *store.EntryRow) *Entry {
	return &Entry{
		ID:        r.ID,
		Content:   r.Content,
		Author:    r.Author,
		CreatedAt: r.CreatedAt,
	}
}
