package request

import "github.com/ndewijer/mf-folio-backend/internal/model"

// SummaryRequest is the body of POST /api/portfolio/summary.
// Records use the upstream statusData field names; Today is an optional YYYY-MM-DD.
type SummaryRequest struct {
	Records []model.HoldingRecord `json:"records"`
	Today   string                `json:"today,omitempty"`
}
