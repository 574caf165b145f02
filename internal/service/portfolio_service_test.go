package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/service"
	tu "github.com/ndewijer/mf-folio-backend/internal/testutil"
	"github.com/ndewijer/mf-folio-backend/internal/valuation"
)

var asOf = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TestPortfolioService_GetSummary tests valuation of a user's upstream holdings.
//
// WHY: This is the path behind the portfolio screen. Totals, the 2dp rate and the
// "no data" handling must match what the investor sees in the mobile app.
func TestPortfolioService_GetSummary(t *testing.T) {
	t.Run("values a one year holding", func(t *testing.T) {
		source := tu.NewMockHoldingSource().WithRecords("42",
			tu.NewHolding().
				WithPurchaseAmount("10000").
				WithCurrentValue("11000").
				WithPurchaseDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).
				Record(),
		)
		svc := tu.NewTestPortfolioService(t, source)

		summary, err := svc.GetSummary(context.Background(), "42", asOf)
		require.NoError(t, err)

		assert.Equal(t, "10000.00", summary.TotalInvested.StringFixed(2))
		assert.Equal(t, "11000.00", summary.TotalCurrent.StringFixed(2))
		assert.Equal(t, "1000.00", summary.ProfitLoss.StringFixed(2))
		assert.Equal(t, "10.00", summary.ProfitLossPercent.StringFixed(2))
		assert.Equal(t, "10.00", summary.FormattedXIRR())
		assert.Equal(t, model.XIRRStatusOK, summary.XIRRStatus)
		assert.Equal(t, []string{"42"}, source.Calls)
	})

	t.Run("no data becomes an empty summary with the upstream message", func(t *testing.T) {
		source := tu.NewMockHoldingSource().WithNoData("42", "No folio found")
		svc := tu.NewTestPortfolioService(t, source)

		summary, err := svc.GetSummary(context.Background(), "42", asOf)
		require.NoError(t, err)

		assert.True(t, summary.TotalInvested.IsZero())
		assert.True(t, summary.TotalCurrent.IsZero())
		assert.False(t, summary.XIRRAvailable())
		assert.Equal(t, model.XIRRUnavailable, summary.FormattedXIRR())
		assert.Equal(t, "No folio found", summary.Message)
	})

	t.Run("bare no data sentinel has no message", func(t *testing.T) {
		source := tu.NewMockHoldingSource().WithError(apperrors.ErrNoPortfolioData)
		svc := tu.NewTestPortfolioService(t, source)

		summary, err := svc.GetSummary(context.Background(), "42", asOf)
		require.NoError(t, err)
		assert.Empty(t, summary.Message)
		assert.Equal(t, 0, summary.RecordCount)
	})

	t.Run("upstream failure keeps its cause", func(t *testing.T) {
		upstream := errors.Join(apperrors.ErrUpstreamUnavailable, errors.New("connection refused"))
		source := tu.NewMockHoldingSource().WithError(upstream)
		svc := tu.NewTestPortfolioService(t, source)

		_, err := svc.GetSummary(context.Background(), "42", asOf)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrFailedToGetPortfolioSummary)
		assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	})

	t.Run("empty user id", func(t *testing.T) {
		source := tu.NewMockHoldingSource()
		svc := tu.NewTestPortfolioService(t, source)

		_, err := svc.GetSummary(context.Background(), "", asOf)
		assert.ErrorIs(t, err, apperrors.ErrEmptyID)
		assert.Zero(t, source.CallCount())
	})

	t.Run("local source reads synced holdings", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		tu.SeedHoldings(t, db, "7",
			tu.NewHolding().WithPurchaseAmount("5000").WithCurrentValue("5500").Record(),
			tu.NewHolding().WithPurchaseAmount("5000").WithCurrentValue("5500").Record(),
		)
		svc := tu.NewTestLocalPortfolioService(t, db)

		summary, err := svc.GetSummary(context.Background(), "7", asOf)
		require.NoError(t, err)
		assert.Equal(t, "10000.00", summary.TotalInvested.StringFixed(2))
		assert.Equal(t, "10.00", summary.FormattedXIRR())
	})

	t.Run("local source without a sync is not found", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		svc := tu.NewTestLocalPortfolioService(t, db)

		_, err := svc.GetSummary(context.Background(), "unknown", asOf)
		assert.ErrorIs(t, err, apperrors.ErrHoldingsNotFound)
	})
}

// TestPortfolioService_SummarizeRecords tests valuation of caller-supplied records.
//
// WHY: The POST summary endpoint and the CLI value exported folios without touching
// a source; a zero "today" must fall back to the current day rather than year 1.
func TestPortfolioService_SummarizeRecords(t *testing.T) {
	t.Run("zero today uses current day", func(t *testing.T) {
		svc := tu.NewTestPortfolioService(t, tu.NewMockHoldingSource())

		summary := svc.SummarizeRecords(tu.CreateHoldings(2), time.Time{})

		today := time.Now()
		assert.Equal(t, today.Year(), summary.AsOf.Year())
		assert.Equal(t, today.YearDay(), summary.AsOf.YearDay())
	})

	t.Run("input order option is honoured", func(t *testing.T) {
		records := []model.HoldingRecord{
			tu.NewHolding().WithPurchaseDate(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)).Record(),
			tu.NewHolding().WithPurchaseDate(time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)).Record(),
		}

		sorted := service.NewPortfolioService(tu.NewMockHoldingSource(), nil, nil, zerolog.Nop())
		legacy := service.NewPortfolioService(tu.NewMockHoldingSource(), valuation.New(valuation.WithInputOrder()), nil, zerolog.Nop())

		a := sorted.SummarizeRecords(records, asOf)
		b := legacy.SummarizeRecords(records, asOf)

		require.True(t, a.XIRRAvailable())
		require.True(t, b.XIRRAvailable())
		assert.InDelta(t, a.XIRRPercent.Decimal.InexactFloat64(), b.XIRRPercent.Decimal.InexactFloat64(), 0.01)
	})

	t.Run("records metrics", func(t *testing.T) {
		m := metrics.NewNop()
		svc := service.NewPortfolioService(tu.NewMockHoldingSource(), nil, m, zerolog.Nop())

		svc.SummarizeRecords(tu.CreateHoldings(3), asOf)
		svc.SummarizeRecords(nil, asOf)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.SummariesComputed))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.XIRRStatus.WithLabelValues(string(model.XIRRStatusOK))))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.XIRRStatus.WithLabelValues(string(model.XIRRStatusInsufficientCashFlows))))
	})
}

// TestPortfolioService_GetActiveHoldings tests the live-positions listing.
//
// WHY: Fully redeemed funds remain in the upstream folio; the holdings view must hide
// them without changing the order the upstream returned.
func TestPortfolioService_GetActiveHoldings(t *testing.T) {
	t.Run("filters redeemed and zero cost records", func(t *testing.T) {
		live := tu.NewHolding().WithFundName("Live").Record()
		redeemed := tu.NewHolding().WithFundName("Redeemed").Redeemed().Record()
		free := tu.NewHolding().WithFundName("Bonus").WithPurchaseAmount("0").Record()

		source := tu.NewMockHoldingSource().WithRecords("42", live, redeemed, free)
		svc := tu.NewTestPortfolioService(t, source)

		active, err := svc.GetActiveHoldings(context.Background(), "42")
		require.NoError(t, err)
		assert.Equal(t, []model.HoldingRecord{live}, active.Holdings)
		assert.Empty(t, active.Message)
	})

	t.Run("no data is an empty list with message", func(t *testing.T) {
		source := tu.NewMockHoldingSource().WithNoData("42", "No folio found")
		svc := tu.NewTestPortfolioService(t, source)

		active, err := svc.GetActiveHoldings(context.Background(), "42")
		require.NoError(t, err)
		assert.NotNil(t, active.Holdings)
		assert.Empty(t, active.Holdings)
		assert.Equal(t, "No folio found", active.Message)
	})

	t.Run("source failure", func(t *testing.T) {
		source := tu.NewMockHoldingSource().WithError(apperrors.ErrUpstreamStatus)
		svc := tu.NewTestPortfolioService(t, source)

		_, err := svc.GetActiveHoldings(context.Background(), "42")
		assert.ErrorIs(t, err, apperrors.ErrFailedToRetrieveHoldings)
		assert.ErrorIs(t, err, apperrors.ErrUpstreamStatus)
	})
}
