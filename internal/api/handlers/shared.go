package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/mf-folio-backend/internal/api/response"
	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	response.RespondJSON(w, status, data)
}

// respondServiceError maps a service error onto an HTTP status and writes the
// standard {"error","detail"} body.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	response.RespondError(w, errorStatus(err), message, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrEmptyID),
		errors.Is(err, apperrors.ErrInvalidUserID),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrHoldingsNotFound),
		errors.Is(err, apperrors.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrSourceNotWritable):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUpstreamUnavailable),
		errors.Is(err, apperrors.ErrUpstreamStatus),
		errors.Is(err, apperrors.ErrUpstreamPayload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
