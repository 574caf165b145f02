// Package validation checks request input before it reaches the services.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
)

// Error collects per-field validation messages. It unwraps to apperrors.ErrInvalidPayload.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	slices.Sort(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error {
	return apperrors.ErrInvalidPayload
}
