package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// HoldingStore persists synced holdings. Implemented by repository.HoldingRepository.
type HoldingStore interface {
	ReplaceHoldings(ctx context.Context, userID string, records []model.HoldingRecord) (int, error)
	RecordSyncRun(ctx context.Context, run model.SyncRun) error
	ListUserIDs(ctx context.Context) ([]string, error)
	LastSyncRun(ctx context.Context, userID string) (*model.SyncRun, error)
}

// SyncService copies users' holdings from the upstream folio API into the local store.
type SyncService struct {
	source      HoldingSource
	store       HoldingStore
	concurrency int
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSyncService creates a new SyncService. At most concurrency users are synced at once.
func NewSyncService(
	source HoldingSource,
	store HoldingStore,
	concurrency int,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *SyncService {
	if concurrency < 1 {
		concurrency = 1
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &SyncService{
		source:      source,
		store:       store,
		concurrency: concurrency,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// SyncUser replaces the user's stored holdings with what the upstream returns and
// records the attempt.
//
// An upstream "no data" answer clears the user's holdings and is recorded as
// model.SyncStatusEmpty. Fetch and store failures leave the previous holdings intact,
// are recorded as model.SyncStatusFailed and are returned wrapped in
// apperrors.ErrFailedToSyncHoldings.
func (s *SyncService) SyncUser(ctx context.Context, userID string) (model.SyncRun, error) {
	if userID == "" {
		return model.SyncRun{}, apperrors.ErrEmptyID
	}

	run := model.SyncRun{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: s.now(),
		Status:    model.SyncStatusOK,
	}

	syncErr := s.pull(ctx, &run)
	run.FinishedAt = s.now()

	if syncErr != nil {
		run.Status = model.SyncStatusFailed
		run.Message = syncErr.Error()
	}

	// Record the run even when the caller's context is gone.
	recordCtx := context.WithoutCancel(ctx)
	if err := s.store.RecordSyncRun(recordCtx, run); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record sync run")
		if syncErr == nil {
			syncErr = err
		}
	}

	s.metrics.SyncUsers.WithLabelValues(run.Status).Inc()

	if syncErr != nil {
		return run, fmt.Errorf("%w for user %s: %w", apperrors.ErrFailedToSyncHoldings, userID, syncErr)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("records", run.RecordCount).
		Str("status", run.Status).
		Msg("holdings synced")

	return run, nil
}

// LastRun returns the user's most recent sync attempt.
// Returns apperrors.ErrHoldingsNotFound when the user has never been synced.
func (s *SyncService) LastRun(ctx context.Context, userID string) (model.SyncRun, error) {
	if userID == "" {
		return model.SyncRun{}, apperrors.ErrEmptyID
	}

	run, err := s.store.LastSyncRun(ctx, userID)
	if err != nil {
		return model.SyncRun{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetSyncStatus, err)
	}
	if run == nil {
		return model.SyncRun{}, apperrors.ErrHoldingsNotFound
	}
	return *run, nil
}

func (s *SyncService) pull(ctx context.Context, run *model.SyncRun) error {
	records, err := s.source.FetchHoldings(ctx, run.UserID)
	if err != nil {
		msg, ok := noDataMessage(err)
		if !ok {
			return err
		}
		run.Status = model.SyncStatusEmpty
		run.Message = msg
		records = nil
	}

	n, err := s.store.ReplaceHoldings(ctx, run.UserID, records)
	if err != nil {
		return err
	}
	run.RecordCount = n
	return nil
}

// SyncAll syncs every user in userIDs, or every user known to the local store when
// userIDs is empty. Users are synced concurrently; one user's failure does not stop
// the others. The returned error joins all per-user failures.
func (s *SyncService) SyncAll(ctx context.Context, userIDs []string) ([]model.SyncRun, error) {
	if len(userIDs) == 0 {
		ids, err := s.store.ListUserIDs(ctx)
		if err != nil {
			s.metrics.SyncRuns.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToSyncHoldings, err)
		}
		userIDs = ids
	}

	start := s.now()
	runs := make([]model.SyncRun, len(userIDs))

	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, userID := range userIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				runs[i] = model.SyncRun{UserID: userID, Status: model.SyncStatusFailed, Message: err.Error()}
				mu.Lock()
				errs = append(errs, fmt.Errorf("user %s skipped: %w", userID, err))
				mu.Unlock()
				return nil
			}

			run, err := s.SyncUser(ctx, userID)
			runs[i] = run
			if err != nil {
				s.logger.Warn().Err(err).Str("user_id", userID).Msg("user sync failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	//nolint:errcheck // workers report through errs
	g.Wait()

	result := "ok"
	if len(errs) > 0 {
		result = "partial"
		if len(errs) == len(userIDs) {
			result = "failed"
		}
	}
	s.metrics.SyncRuns.WithLabelValues(result).Inc()

	s.logger.Info().
		Int("users", len(userIDs)).
		Int("failures", len(errs)).
		Dur("duration", s.now().Sub(start)).
		Msg("holdings sync finished")

	return runs, errors.Join(errs...)
}
