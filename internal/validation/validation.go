package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
)

// MaxUserIDLength bounds the upstream user id accepted in URLs.
const MaxUserIDLength = 64

// DateLayout is the only date format accepted from API callers.
const DateLayout = "2006-01-02"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateUserID checks that id is a plausible upstream user id.
func ValidateUserID(id string) error {
	if id == "" {
		return apperrors.ErrEmptyID
	}
	if len(id) > MaxUserIDLength {
		return fmt.Errorf("%w: longer than %d characters", apperrors.ErrInvalidUserID, MaxUserIDLength)
	}
	if !userIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidUserID, id)
	}
	return nil
}

// ParseDate parses an optional YYYY-MM-DD date. An empty string yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", apperrors.ErrInvalidDate, raw)
	}
	return t, nil
}
