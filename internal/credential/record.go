// Package credential implements the shared-PIN credential core: the
// singleton credential record, constant-time role resolution, and serialized
// PIN/label rotation.
package credential

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/duetlabs/duet/internal/apperr"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Record is the singleton credential state: one PIN per role plus the
// viewer's display label. AuthorPIN and ViewerPIN always differ; the
// rotation manager enforces the invariant on every commit.
type Record struct {
	AuthorPIN   string
	ViewerPIN   string
	ViewerLabel string
}

// validatePIN classifies anything that is not exactly four digits as a
// format error, before any secret is consulted.
func validatePIN(pin string) error {
	if err := validation.Validate(pin, validation.Required, validation.Match(pinPattern)); err != nil {
		return apperr.ErrInvalidFormat
	}
	return nil
}

// validateLabel checks the trimmed display label length bounds.
func validateLabel(label string) error {
	if err := validation.Validate(label, validation.Required, validation.Length(1, 20)); err != nil {
		return apperr.ErrInvalidLabel
	}
	return nil
}

// TrimLabel normalises a submitted label the way the rotation manager will
// validate it.
func TrimLabel(label string) string {
	return strings.TrimSpace(label)
}

// validateRecord checks a full record before commit.
func validateRecord(rec Record) error {
	if err := validatePIN(rec.AuthorPIN); err != nil {
		return err
	}
	if err := validatePIN(rec.ViewerPIN); err != nil {
		return err
	}
	if err := validateLabel(rec.ViewerLabel); err != nil {
		return err
	}
	if rec.AuthorPIN == rec.ViewerPIN {
		return apperr.ErrConflict
	}
	return nil
}

// errSeedInvalid reports an unusable first-boot seed.
var errSeedInvalid = errors.New("credential: invalid seed record")
