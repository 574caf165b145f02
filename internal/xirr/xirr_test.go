package xirr

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// TestSolve_TwoFlowRecoversRate tests the solver on a buy-then-value schedule.
//
// WHY: A single contribution grown at a known rate is the one case with a closed-form
// answer, so it pins the NPV, derivative and year-fraction conventions together.
func TestSolve_TwoFlowRecoversRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		days int
	}{
		{"twenty percent over one year", 0.20, 365},
		{"eight percent over 500 days", 0.08, 500},
		{"loss over 200 days", -0.15, 200},
		{"high rate over a quarter", 0.35, 90},
		{"flat", 0.0, 730},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := day("2023-03-15")
			years := float64(tt.days) / 365
			principal := 10000.0
			final := principal * math.Pow(1+tt.rate, years)

			flows := []CashFlow{
				{Amount: -principal, Date: start},
				{Amount: final, Date: start.AddDate(0, 0, tt.days)},
			}

			got, err := Solve(flows, DefaultGuess)
			require.NoError(t, err)

			if tt.rate == 0 {
				assert.InDelta(t, 0, got, 1e-6)
				return
			}
			assert.InEpsilon(t, tt.rate, got, 1e-4)
		})
	}
}

func TestSolve_OneYearScenario(t *testing.T) {
	flows := []CashFlow{
		{Amount: -10000, Date: day("2023-01-01")},
		{Amount: 12000, Date: day("2024-01-01")},
	}

	res, err := Default.Solve(flows, DefaultGuess)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, res.Rate, 1e-6)
	assert.Greater(t, res.Iterations, 0)
	assert.LessOrEqual(t, res.Iterations, DefaultMaxIterations)
}

// TestSolve_Termination tests that the loop is bounded.
//
// WHY: Newton-Raphson has no bracketing here; schedules without a root must still
// return promptly with ErrNoConvergence instead of looping.
func TestSolve_Termination(t *testing.T) {
	t.Run("all contributions have no root", func(t *testing.T) {
		flows := []CashFlow{
			{Amount: -100, Date: day("2023-01-01")},
			{Amount: -100, Date: day("2024-01-01")},
		}
		_, err := Solve(flows, DefaultGuess)
		assert.ErrorIs(t, err, ErrNoConvergence)
	})

	t.Run("single flow has a flat derivative", func(t *testing.T) {
		flows := []CashFlow{{Amount: -100, Date: day("2023-01-01")}}
		_, err := Solve(flows, DefaultGuess)
		assert.ErrorIs(t, err, ErrNoConvergence)
	})

	t.Run("iteration cap is honoured", func(t *testing.T) {
		flows := []CashFlow{
			{Amount: -10000, Date: day("2023-01-01")},
			{Amount: 25000, Date: day("2023-02-01")},
		}
		s := Solver{MaxIterations: 1, Tolerance: DefaultTolerance}
		_, err := s.Solve(flows, DefaultGuess)
		assert.ErrorIs(t, err, ErrNoConvergence)
	})

	t.Run("empty schedule", func(t *testing.T) {
		_, err := Solve(nil, DefaultGuess)
		assert.ErrorIs(t, err, ErrEmptySchedule)
	})
}

func TestSolve_MultipleContributions(t *testing.T) {
	flows := []CashFlow{
		{Amount: -5000, Date: day("2022-01-01")},
		{Amount: -5000, Date: day("2022-07-01")},
		{Amount: -5000, Date: day("2023-01-01")},
		{Amount: 17000, Date: day("2024-01-01")},
	}

	rate, err := Solve(flows, DefaultGuess)
	require.NoError(t, err)
	assert.True(t, IsFinite(rate))
	assert.InDelta(t, 0, NPV(flows, rate), 1e-3)
	assert.Greater(t, rate, 0.0)
}

func TestYearFractions(t *testing.T) {
	t.Run("anchored on first element", func(t *testing.T) {
		flows := []CashFlow{
			{Amount: -1, Date: day("2024-01-01")},
			{Amount: -1, Date: day("2023-01-01")},
			{Amount: 3, Date: day("2025-01-01")},
		}
		years := YearFractions(flows)
		assert.Equal(t, 0.0, years[0])
		assert.InDelta(t, -1.0, years[1], 1e-12)
		// 2024 is a leap year: 366 days over a fixed 365-day year.
		assert.InDelta(t, 366.0/365.0, years[2], 1e-12)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, YearFractions(nil))
	})
}

func TestDaysBetween(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day different clock", time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC), 0},
		{"one year", day("2023-01-01"), day("2024-01-01"), 365},
		{"backwards", day("2024-01-10"), day("2024-01-01"), -9},
		{"zoned dates use their own calendar day", time.Date(2024, 5, 1, 0, 30, 0, 0, ist), time.Date(2024, 5, 2, 23, 0, 0, 0, ist), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0.12))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}
