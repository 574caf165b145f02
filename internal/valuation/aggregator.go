// Package valuation turns a list of fund holdings into a portfolio summary:
// invested and current totals, profit and loss, and the annualized
// money-weighted return (XIRR) of the contributions.
//
// Summarize never fails. Malformed amounts count as zero, records without a
// usable purchase are left out of the cash-flow schedule, and a return that
// cannot be computed is reported as unavailable on the summary.
package valuation

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/xirr"
)

var hundred = decimal.NewFromInt(100)

// Aggregator summarizes holdings. It holds no state between calls and is safe
// for concurrent use.
type Aggregator struct {
	solver     xirr.Solver
	guess      float64
	inputOrder bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithInputOrder anchors the XIRR time origin on the first purchase as received
// instead of the earliest one. Older folio reports were computed this way.
func WithInputOrder() Option {
	return func(a *Aggregator) {
		a.inputOrder = true
	}
}

// WithSolver replaces the default iteration limits.
func WithSolver(s xirr.Solver) Option {
	return func(a *Aggregator) {
		a.solver = s
	}
}

// WithGuess sets the solver's starting rate.
func WithGuess(guess float64) Option {
	return func(a *Aggregator) {
		a.guess = guess
	}
}

// New creates an Aggregator with the default solver and date-sorted schedules.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		solver: xirr.Default,
		guess:  xirr.DefaultGuess,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAggregator = New()

// Summarize values records as of today using the default Aggregator.
func Summarize(records []model.HoldingRecord, today time.Time) model.PortfolioSummary {
	return defaultAggregator.Summarize(records, today)
}

// Summarize values records as of today.
func (a *Aggregator) Summarize(records []model.HoldingRecord, today time.Time) model.PortfolioSummary {
	asOf := calendarDay(today)

	summary := model.PortfolioSummary{
		AsOf:        asOf,
		RecordCount: len(records),
	}

	for _, r := range records {
		invested, _ := ParseAmount(r.PurchaseAmount)
		current, _ := ParseAmount(r.CurrentValue)
		summary.TotalInvested = summary.TotalInvested.Add(invested)
		summary.TotalCurrent = summary.TotalCurrent.Add(current)
	}

	summary.ProfitLoss = summary.TotalCurrent.Sub(summary.TotalInvested)
	if summary.TotalInvested.IsPositive() {
		summary.ProfitLossPercent = summary.ProfitLoss.Mul(hundred).Div(summary.TotalInvested)
	}

	flows := a.CashFlows(records, summary.TotalCurrent, asOf)
	summary.CashFlowCount = len(flows)
	summary.ExcludedRecords = len(records) - contributionCount(flows, summary.TotalCurrent)

	a.applyXIRR(&summary, flows)

	return summary
}

// CashFlows builds the signed schedule handed to the solver: one outflow per
// usable purchase and, when totalCurrent is positive, one inflow dated asOf.
// Unless WithInputOrder is set the schedule is sorted by date.
func (a *Aggregator) CashFlows(records []model.HoldingRecord, totalCurrent decimal.Decimal, asOf time.Time) []xirr.CashFlow {
	flows := make([]xirr.CashFlow, 0, len(records)+1)

	for _, r := range records {
		amount, ok := ParseAmount(r.PurchaseAmount)
		if !ok || !amount.IsPositive() {
			continue
		}
		date, ok := ParseDate(r.PurchaseDate)
		if !ok {
			continue
		}
		flows = append(flows, xirr.CashFlow{
			Amount: -amount.InexactFloat64(),
			Date:   date,
		})
	}

	if totalCurrent.IsPositive() {
		flows = append(flows, xirr.CashFlow{
			Amount: totalCurrent.InexactFloat64(),
			Date:   calendarDay(asOf),
		})
	}

	if !a.inputOrder {
		slices.SortStableFunc(flows, func(x, y xirr.CashFlow) int {
			return x.Date.Compare(y.Date)
		})
	}

	return flows
}

func (a *Aggregator) applyXIRR(summary *model.PortfolioSummary, flows []xirr.CashFlow) {
	if len(flows) < 2 {
		summary.XIRRStatus = model.XIRRStatusInsufficientCashFlows
		return
	}

	res, err := a.solver.Solve(flows, a.guess)
	switch {
	case err != nil:
		summary.XIRRStatus = model.XIRRStatusNoConvergence
		return
	case !xirr.IsFinite(res.Rate):
		summary.XIRRStatus = model.XIRRStatusNonFinite
		return
	}

	// A converged rate near MaxFloat64 still overflows once scaled to percent.
	pct := res.Rate * 100
	if !xirr.IsFinite(pct) {
		summary.XIRRStatus = model.XIRRStatusNonFinite
		return
	}

	summary.XIRRPercent = decimal.NewNullDecimal(decimal.NewFromFloat(pct).Round(2))
	summary.XIRRStatus = model.XIRRStatusOK
	summary.XIRRIterations = res.Iterations
}

func contributionCount(flows []xirr.CashFlow, totalCurrent decimal.Decimal) int {
	if totalCurrent.IsPositive() {
		return len(flows) - 1
	}
	return len(flows)
}
