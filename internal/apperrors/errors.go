package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrNoPortfolioData indicates the holding source answered but had no folio for the user.
	ErrNoPortfolioData = errors.New("no portfolio data available")

	// ErrHoldingsNotFound indicates the local store has never synced the user.
	ErrHoldingsNotFound = errors.New("holdings not found")

	// ErrProfileNotFound indicates the folio API had no profile for the user.
	ErrProfileNotFound = errors.New("user profile not found")
)

// Validation errors represent malformed caller input.
var (
	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidUserID indicates the user ID contains characters the upstream API does not accept.
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrInvalidDate indicates a date parameter could not be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPayload indicates a request body could not be decoded or failed validation.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Upstream errors represent failures of the remote folio API.
var (
	// ErrUpstreamUnavailable indicates the folio API could not be reached.
	ErrUpstreamUnavailable = errors.New("folio API unavailable")

	// ErrUpstreamStatus indicates the folio API answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("folio API returned an error status")

	// ErrUpstreamPayload indicates the folio API answered with a body that is not the expected JSON.
	ErrUpstreamPayload = errors.New("folio API returned an unreadable payload")
)

// Operation failure errors represent system-level failures.
var (
	ErrFailedToGetPortfolioSummary = errors.New("failed to get portfolio summary")
	ErrFailedToRetrieveHoldings    = errors.New("failed to retrieve holdings")
	ErrFailedToSyncHoldings        = errors.New("failed to sync holdings")
	ErrFailedToGetSyncStatus       = errors.New("failed to get sync status")
	ErrFailedToGetVersionInfo      = errors.New("failed to get version information")

	// ErrSourceNotWritable indicates a sync was requested without a local holding store.
	ErrSourceNotWritable = errors.New("local holding store is not configured")
)
