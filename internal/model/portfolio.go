package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// XIRRStatus explains why XIRRPercent is or is not available.
type XIRRStatus string

const (
	XIRRStatusOK                    XIRRStatus = "ok"
	XIRRStatusInsufficientCashFlows XIRRStatus = "insufficient_cash_flows"
	XIRRStatusNoConvergence         XIRRStatus = "no_convergence"
	XIRRStatusNonFinite             XIRRStatus = "non_finite"
)

// XIRRUnavailable is the display sentinel for a rate that could not be computed.
const XIRRUnavailable = "—"

// PortfolioSummary is the valuation of a set of holdings on a given day.
// It is rebuilt from its inputs on every request and never stored.
type PortfolioSummary struct {
	TotalInvested     decimal.Decimal     // Sum of parsed purchase amounts
	TotalCurrent      decimal.Decimal     // Sum of parsed current values
	ProfitLoss        decimal.Decimal     // TotalCurrent - TotalInvested
	ProfitLossPercent decimal.Decimal     // ProfitLoss * 100 / TotalInvested, 0 without a positive base
	XIRRPercent       decimal.NullDecimal // Annualized return in percent, 2dp; invalid when unavailable
	XIRRStatus        XIRRStatus
	XIRRIterations    int // Solver steps; 0 when the solver did not converge or was not run

	AsOf            time.Time // Valuation day used for the present-value flow
	RecordCount     int       // Records received
	CashFlowCount   int       // Flows handed to the solver, including present value
	ExcludedRecords int       // Records left out of the cash-flow schedule
	Message         string    // Upstream notice when the source had no data
}

// XIRRAvailable reports whether an annualized return was computed.
func (s PortfolioSummary) XIRRAvailable() bool {
	return s.XIRRPercent.Valid
}

// FormattedXIRR returns the rate fixed to two decimals, or XIRRUnavailable.
func (s PortfolioSummary) FormattedXIRR() string {
	if !s.XIRRPercent.Valid {
		return XIRRUnavailable
	}
	return s.XIRRPercent.Decimal.StringFixed(2)
}
