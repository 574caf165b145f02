package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/folio"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/valuation"
)

// HoldingSource delivers a user's raw holding records.
// Implemented by folio.Client (upstream API) and repository.HoldingRepository (local store).
type HoldingSource interface {
	FetchHoldings(ctx context.Context, userID string) ([]model.HoldingRecord, error)
}

// PortfolioService values users' mutual-fund holdings.
// It fetches records from a HoldingSource and hands them to the valuation aggregator;
// summaries are recomputed on every call.
type PortfolioService struct {
	source     HoldingSource
	aggregator *valuation.Aggregator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPortfolioService creates a new PortfolioService.
// A nil aggregator uses the default one; nil metrics are replaced by an unregistered set.
func NewPortfolioService(
	source HoldingSource,
	aggregator *valuation.Aggregator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PortfolioService {
	if aggregator == nil {
		aggregator = valuation.New()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &PortfolioService{
		source:     source,
		aggregator: aggregator,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// GetSummary fetches the user's holdings and values them as of today.
// A zero today means the current day.
//
// A source that has no folio for the user is not an error: the result is the empty
// summary with the source's message attached. Any other source failure is returned
// wrapped in apperrors.ErrFailedToGetPortfolioSummary and keeps its original cause.
func (s *PortfolioService) GetSummary(ctx context.Context, userID string, today time.Time) (model.PortfolioSummary, error) {
	if userID == "" {
		return model.PortfolioSummary{}, apperrors.ErrEmptyID
	}

	records, err := s.source.FetchHoldings(ctx, userID)
	if err != nil {
		if msg, ok := noDataMessage(err); ok {
			s.logger.Info().Str("user_id", userID).Str("message", msg).Msg("no portfolio data for user")
			summary := s.SummarizeRecords(nil, today)
			summary.Message = msg
			return summary, nil
		}
		return model.PortfolioSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetPortfolioSummary, err)
	}

	summary := s.SummarizeRecords(records, today)

	s.logger.Debug().
		Str("user_id", userID).
		Int("records", summary.RecordCount).
		Int("excluded", summary.ExcludedRecords).
		Str("xirr_status", string(summary.XIRRStatus)).
		Msg("portfolio summary computed")

	return summary, nil
}

// SummarizeRecords values caller-supplied records as of today. A zero today means the
// current day. It never fails: unusable records are skipped and an incomputable rate is
// reported through XIRRStatus.
func (s *PortfolioService) SummarizeRecords(records []model.HoldingRecord, today time.Time) model.PortfolioSummary {
	if today.IsZero() {
		today = s.now()
	}

	summary := s.aggregator.Summarize(records, today)
	s.observe(summary)
	return summary
}

// GetActiveHoldings returns the user's live positions: records whose purchase amount
// and allocated units are both positive.
func (s *PortfolioService) GetActiveHoldings(ctx context.Context, userID string) (model.ActiveHoldings, error) {
	if userID == "" {
		return model.ActiveHoldings{}, apperrors.ErrEmptyID
	}

	records, err := s.source.FetchHoldings(ctx, userID)
	if err != nil {
		if msg, ok := noDataMessage(err); ok {
			return model.ActiveHoldings{Holdings: []model.HoldingRecord{}, Message: msg}, nil
		}
		return model.ActiveHoldings{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveHoldings, err)
	}

	return model.ActiveHoldings{Holdings: valuation.ActiveHoldings(records)}, nil
}

func (s *PortfolioService) observe(summary model.PortfolioSummary) {
	s.metrics.SummariesComputed.Inc()
	s.metrics.HoldingsPerFolio.Observe(float64(summary.RecordCount))
	if summary.XIRRStatus != "" {
		s.metrics.XIRRStatus.WithLabelValues(string(summary.XIRRStatus)).Inc()
	}
	if summary.XIRRAvailable() {
		s.metrics.XIRRIterations.Observe(float64(summary.XIRRIterations))
	}
}

// noDataMessage reports whether err means "no folio for this user" and returns the
// upstream's explanation, if any.
func noDataMessage(err error) (string, bool) {
	if !errors.Is(err, apperrors.ErrNoPortfolioData) {
		return "", false
	}
	var noData *folio.NoDataError
	if errors.As(err, &noData) {
		return noData.Message, true
	}
	return "", true
}
