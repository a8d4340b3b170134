package credential

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/duetlabs/duet/internal/apperr"
)

// Persister is the durable backing for the credential record. Load returns
// apperr.ErrNotFound when the record has never been seeded; Save must
// replace the whole record in one atomic write.
type Persister interface {
	Load() (Record, error)
	Save(Record) error
}

// Store holds the current credential record. Reads take an immutable
// snapshot through an atomic pointer, so resolution never blocks on a
// rotation in progress; the rotation manager is the only writer.
type Store struct {
	persist Persister
	current atomic.Pointer[Record]
}

// NewStore loads the persisted record, seeding the persister from seed on
// first boot. The persisted record wins over the seed on every later boot.
func NewStore(persist Persister, seed Record) (*Store, error) {
	rec, err := persist.Load()
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if err := validateRecord(seed); err != nil {
			return nil, fmt.Errorf("%w: %w", errSeedInvalid, err)
		}
		if err := persist.Save(seed); err != nil {
			return nil, fmt.Errorf("credential: seed store: %w", err)
		}
		rec = seed
	case err != nil:
		return nil, fmt.Errorf("credential: load record: %w", err)
	}

	s := &Store{persist: persist}
	s.current.Store(&rec)
	return s, nil
}

// Get returns the current record snapshot. The returned value is a copy;
// mutating it has no effect on the store.
func (s *Store) Get() Record {
	return *s.current.Load()
}

// Set durably persists rec and then swaps it in as the current snapshot.
// Readers observe either the full old record or the full new one, never a
// mix. Only the rotation manager calls Set; it serializes writers.
func (s *Store) Set(rec Record) error {
	if err := s.persist.Save(rec); err != nil {
		return fmt.Errorf("credential: persist record: %w", err)
	}
	s.current.Store(&rec)
	return nil
}
