package credential

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	"github.com/duetlabs/duet/internal/apperr"
)

// Manager serializes every credential mutation. A rotation fully commits or
// fully rejects before the next one's precondition check runs, and no label
// change can interleave with a PIN change.
type Manager struct {
	mu       sync.Mutex
	store    *Store
	resolver *Resolver
	logger   *slog.Logger
}

// NewManager creates a rotation manager over the store and resolver.
func NewManager(store *Store, resolver *Resolver, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, resolver: resolver, logger: logger}
}

// Rotate replaces the author PIN, and the viewer label when newLabel is
// non-empty, as one all-or-nothing commit.
//
// The session boundary enforces the author-role precondition before calling;
// Rotate still re-verifies oldPIN through the resolver so a forged session
// with a stale or wrong PIN cannot rotate. Rotating to the current author
// PIN is an allowed idempotent no-op. On success the caller must revoke the
// author's sessions and require re-authentication with the new PIN.
//
// Failures: apperr.ErrUnauthorized (oldPIN did not resolve to author),
// apperr.ErrInvalidFormat (newPIN malformed), apperr.ErrConflict (newPIN
// equals the viewer PIN), apperr.ErrInvalidLabel. The record is untouched on
// every failure path.
func (m *Manager) Rotate(oldPIN, newPIN, newLabel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireAuthor(oldPIN); err != nil {
		return err
	}
	if err := validatePIN(newPIN); err != nil {
		return err
	}

	rec := m.store.Get()
	if subtle.ConstantTimeCompare([]byte(newPIN), []byte(rec.ViewerPIN)) == 1 {
		return apperr.ErrConflict
	}

	// Validate the label before mutating anything so a bad label cannot
	// leave a half-applied PIN change.
	label := rec.ViewerLabel
	if newLabel != "" {
		label = TrimLabel(newLabel)
		if err := validateLabel(label); err != nil {
			return err
		}
	}

	rec.AuthorPIN = newPIN
	rec.ViewerLabel = label
	if err := m.store.Set(rec); err != nil {
		return fmt.Errorf("credential: rotate: %w", err)
	}
	m.logger.Info("author pin rotated", slog.Bool("label_changed", newLabel != ""))
	return nil
}

// ChangeLabel updates the viewer display label without touching either PIN.
// currentPIN must resolve to the author role.
func (m *Manager) ChangeLabel(currentPIN, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireAuthor(currentPIN); err != nil {
		return err
	}

	label = TrimLabel(label)
	if err := validateLabel(label); err != nil {
		return err
	}

	rec := m.store.Get()
	rec.ViewerLabel = label
	if err := m.store.Set(rec); err != nil {
		return fmt.Errorf("credential: change label: %w", err)
	}
	m.logger.Info("viewer label changed")
	return nil
}

// requireAuthor resolves pin and demands the author role. Any failure —
// malformed, unknown, or viewer — collapses to ErrUnauthorized so the
// outcome does not reveal which check tripped.
func (m *Manager) requireAuthor(pin string) error {
	role, err := m.resolver.Resolve(pin)
	if err != nil || role != RoleAuthor {
		return apperr.ErrUnauthorized
	}
	return nil
}
