// Package xirr computes the money-weighted annualized return of an irregular
// cash-flow schedule using Newton-Raphson on its net present value.
//
// Time offsets are whole calendar days divided by a fixed 365-day year, with no
// leap-year correction.
package xirr

import (
	"errors"
	"math"
	"time"
)

const (
	// DefaultGuess is the starting rate used by Solve.
	DefaultGuess = 0.1

	// DefaultMaxIterations caps the Newton-Raphson loop.
	DefaultMaxIterations = 100

	// DefaultTolerance is the step size below which the rate is considered converged.
	DefaultTolerance = 1e-6

	daysPerYear = 365.0
)

var (
	// ErrEmptySchedule is returned when Solve is called without any cash flows.
	ErrEmptySchedule = errors.New("cash-flow schedule is empty")

	// ErrNoConvergence is returned when the iteration cap is reached before the
	// rate settles within tolerance.
	ErrNoConvergence = errors.New("xirr did not converge")
)

// CashFlow is a signed amount on a calendar date. Negative amounts are
// contributions, positive amounts are withdrawals or present value.
type CashFlow struct {
	Amount float64
	Date   time.Time
}

// Result is the outcome of a converged solve.
type Result struct {
	Rate       float64 // Annualized rate as a fraction (0.2 == 20%)
	Iterations int     // Newton-Raphson steps taken
}

// Solver holds the iteration limits. The zero value is not useful; use Default.
type Solver struct {
	MaxIterations int
	Tolerance     float64
}

// Default is the solver used by Solve.
var Default = Solver{
	MaxIterations: DefaultMaxIterations,
	Tolerance:     DefaultTolerance,
}

// Solve runs the default solver from guess and returns the annualized rate.
func Solve(flows []CashFlow, guess float64) (float64, error) {
	res, err := Default.Solve(flows, guess)
	if err != nil {
		return 0, err
	}
	return res.Rate, nil
}

// Solve finds r such that NPV(r) == 0, anchoring time on flows[0].Date.
//
// The returned rate is not guaranteed to be finite: a flat derivative or a
// runaway step produces Inf or NaN, which callers must check with IsFinite.
func (s Solver) Solve(flows []CashFlow, guess float64) (Result, error) {
	if len(flows) == 0 {
		return Result{}, ErrEmptySchedule
	}

	years := YearFractions(flows)

	rate := guess
	for i := 1; i <= s.MaxIterations; i++ {
		value := npv(flows, years, rate)
		deriv := npvDerivative(flows, years, rate)
		next := rate - value/deriv

		if math.Abs(next-rate) < s.Tolerance {
			return Result{Rate: next, Iterations: i}, nil
		}
		rate = next
	}

	return Result{}, ErrNoConvergence
}

// NPV is the net present value of flows discounted at rate, anchored on flows[0].
func NPV(flows []CashFlow, rate float64) float64 {
	if len(flows) == 0 {
		return 0
	}
	return npv(flows, YearFractions(flows), rate)
}

// YearFractions returns each flow's offset from flows[0] in 365-day years.
// Offsets are negative for flows dated before the first one.
func YearFractions(flows []CashFlow) []float64 {
	years := make([]float64, len(flows))
	if len(flows) == 0 {
		return years
	}
	origin := flows[0].Date
	for i, f := range flows {
		years[i] = float64(DaysBetween(origin, f.Date)) / daysPerYear
	}
	return years
}

// DaysBetween counts whole calendar days from a to b. Clock time and zone
// offsets are dropped before counting.
func DaysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a)).Hours() / 24)
}

// IsFinite reports whether rate is neither NaN nor infinite.
func IsFinite(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func npv(flows []CashFlow, years []float64, rate float64) float64 {
	var sum float64
	for i, f := range flows {
		sum += f.Amount / math.Pow(1+rate, years[i])
	}
	return sum
}

func npvDerivative(flows []CashFlow, years []float64, rate float64) float64 {
	var sum float64
	for i, f := range flows {
		t := years[i]
		sum -= t * f.Amount / math.Pow(1+rate, t+1)
	}
	return sum
}
