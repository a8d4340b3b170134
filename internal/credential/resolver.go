package credential

import (
	"crypto/subtle"
	"log/slog"

	"github.com/duetlabs/duet/internal/apperr"
)

// Resolver maps a submitted PIN to a role against the current credential
// snapshot.
type Resolver struct {
	store  *Store
	logger *slog.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the role the submitted PIN authenticates, or
// apperr.ErrInvalidFormat / apperr.ErrUnauthorized.
//
// Malformed input is rejected before the store is read. Well-formed input is
// compared against both role PINs in fixed order with constant-time
// comparison — never short-circuiting after a match — so response timing
// does not distinguish "matched author" from "matched viewer" from "matched
// neither". Every call reads a fresh snapshot; an in-flight rotation is
// therefore resolved against either the full old or full new record.
func (r *Resolver) Resolve(submittedPIN string) (Role, error) {
	if err := validatePIN(submittedPIN); err != nil {
		return 0, err
	}

	rec := r.store.Get()
	authorMatch := subtle.ConstantTimeCompare([]byte(submittedPIN), []byte(rec.AuthorPIN))
	viewerMatch := subtle.ConstantTimeCompare([]byte(submittedPIN), []byte(rec.ViewerPIN))

	// The two PINs always differ, so at most one comparison succeeds.
	switch {
	case authorMatch == 1:
		r.logger.Debug("pin resolved", slog.String("role", RoleAuthor.String()))
		return RoleAuthor, nil
	case viewerMatch == 1:
		r.logger.Debug("pin resolved", slog.String("role", RoleViewer.String()))
		return RoleViewer, nil
	default:
		r.logger.Info("pin resolution failed")
		return 0, apperr.ErrUnauthorized
	}
}
