// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/mf-folio-backend/internal/api/response"
	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/validation"
)

// ValidateUserIDMiddleware validates that the userId URL parameter is present and
// well formed. Returns 400 Bad Request otherwise.
//
// Example usage in router:
//
//	r.Route("/{userId}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUserIDMiddleware)
//	    r.Get("/summary", handler.Summary)
//	})
func ValidateUserIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		if err := validation.ValidateUserID(userID); err != nil {
			if errors.Is(err, apperrors.ErrEmptyID) {
				response.RespondError(w, http.StatusBadRequest, "user id is required", "")
				return
			}
			response.RespondError(w, http.StatusBadRequest, "invalid user id", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
