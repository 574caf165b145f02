package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/mf-folio-backend/internal/api/request"
	"github.com/ndewijer/mf-folio-backend/internal/api/response"
	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/service"
	"github.com/ndewijer/mf-folio-backend/internal/validation"
)

const maxSummaryBodyBytes = 4 << 20

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	syncService      *service.SyncService
}

// NewPortfolioHandler creates a new PortfolioHandler.
// syncService may be nil when no local holding store is configured.
func NewPortfolioHandler(portfolioService *service.PortfolioService, syncService *service.SyncService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		syncService:      syncService,
	}
}

// PortfolioSummaryResponse is the wire form of a portfolio summary. Money values are
// strings fixed to two decimals; xirrPercent is "—" when xirrAvailable is false.
type PortfolioSummaryResponse struct {
	TotalInvested     string `json:"totalInvested"`
	TotalCurrent      string `json:"totalCurrent"`
	ProfitLoss        string `json:"profitLoss"`
	ProfitLossPercent string `json:"profitLossPercent"`
	XIRRPercent       string `json:"xirrPercent"`
	XIRRAvailable     bool   `json:"xirrAvailable"`
	XIRRStatus        string `json:"xirrStatus"`
	AsOf              string `json:"asOf"`
	RecordCount       int    `json:"recordCount"`
	ExcludedRecords   int    `json:"excludedRecords"`
	Message           string `json:"message,omitempty"`
}

// NewPortfolioSummaryResponse formats a summary for the API.
func NewPortfolioSummaryResponse(s model.PortfolioSummary) PortfolioSummaryResponse {
	return PortfolioSummaryResponse{
		TotalInvested:     s.TotalInvested.StringFixed(2),
		TotalCurrent:      s.TotalCurrent.StringFixed(2),
		ProfitLoss:        s.ProfitLoss.StringFixed(2),
		ProfitLossPercent: s.ProfitLossPercent.StringFixed(2),
		XIRRPercent:       s.FormattedXIRR(),
		XIRRAvailable:     s.XIRRAvailable(),
		XIRRStatus:        string(s.XIRRStatus),
		AsOf:              s.AsOf.Format(validation.DateLayout),
		RecordCount:       s.RecordCount,
		ExcludedRecords:   s.ExcludedRecords,
		Message:           s.Message,
	}
}

// HoldingsResponse lists a user's active holdings.
type HoldingsResponse struct {
	UserID   string                `json:"userId"`
	Count    int                   `json:"count"`
	Holdings []model.HoldingRecord `json:"holdings"`
	Message  string                `json:"message,omitempty"`
}

// Summarize values the records in the request body.
//
// Endpoint: POST /api/portfolio/summary
// Request: request.SummaryRequest
// Response: 200 OK with PortfolioSummaryResponse
// Error: 400 Bad Request for malformed JSON, too many records or a bad "today"
func (h *PortfolioHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req request.SummaryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSummaryBodyBytes)).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSummaryRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	// Validated above
	today, _ := validation.ParseDate(req.Today)

	summary := h.portfolioService.SummarizeRecords(req.Records, today)
	respondJSON(w, http.StatusOK, NewPortfolioSummaryResponse(summary))
}

// Summary fetches the user's holdings from the configured source and values them.
//
// Endpoint: GET /api/portfolio/{userId}/summary?today=YYYY-MM-DD
// Response: 200 OK with PortfolioSummaryResponse (also when the user has no folio)
// Error: 400 Bad Request for a bad "today"
// Error: 404 Not Found when the local store has never synced the user
// Error: 502 Bad Gateway when the folio API fails
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	today, err := validation.ParseDate(r.URL.Query().Get("today"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid today parameter", err.Error())
		return
	}

	summary, err := h.portfolioService.GetSummary(r.Context(), userID, today)
	if err != nil {
		respondServiceError(w, err, "Failed to get portfolio summary")
		return
	}

	respondJSON(w, http.StatusOK, NewPortfolioSummaryResponse(summary))
}

// Holdings lists the user's active holdings in source order.
//
// Endpoint: GET /api/portfolio/{userId}/holdings
// Response: 200 OK with HoldingsResponse
// Error: 404 Not Found when the local store has never synced the user
// Error: 502 Bad Gateway when the folio API fails
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	active, err := h.portfolioService.GetActiveHoldings(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to retrieve holdings")
		return
	}

	respondJSON(w, http.StatusOK, HoldingsResponse{
		UserID:   userID,
		Count:    len(active.Holdings),
		Holdings: active.Holdings,
		Message:  active.Message,
	})
}

// Sync pulls the user's holdings from the folio API into the local store.
//
// Endpoint: POST /api/portfolio/{userId}/sync
// Response: 200 OK with model.SyncRun
// Error: 409 Conflict when no local holding store is configured
// Error: 502 Bad Gateway when the folio API fails
func (h *PortfolioHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncService == nil {
		respondServiceError(w, apperrors.ErrSourceNotWritable, "Failed to sync holdings")
		return
	}

	userID := chi.URLParam(r, "userId")

	run, err := h.syncService.SyncUser(r.Context(), userID)
	if err != nil {
		respondJSON(w, errorStatus(err), map[string]any{
			"error":  "Failed to sync holdings",
			"detail": err.Error(),
			"run":    run,
		})
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// SyncStatus returns the user's most recent sync attempt.
//
// Endpoint: GET /api/portfolio/{userId}/sync
// Response: 200 OK with model.SyncRun
// Error: 404 Not Found when the user has never been synced
// Error: 409 Conflict when no local holding store is configured
func (h *PortfolioHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.syncService == nil {
		respondServiceError(w, apperrors.ErrSourceNotWritable, "Failed to get sync status")
		return
	}

	run, err := h.syncService.LastRun(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, err, "Failed to get sync status")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
