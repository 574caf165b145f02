package service

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/database"
	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	migrator *goose.Provider
	features map[string]bool
}

// NewSystemService creates a new SystemService.
// features is reported verbatim by CheckVersion.
func NewSystemService(db *sql.DB, migrator *goose.Provider, features map[string]bool) *SystemService {
	return &SystemService{
		db:       db,
		migrator: migrator,
		features: features,
	}
}

// CheckHealth pings the database.
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion reports the application version, the applied schema version and
// whether migrations are pending.
func (s *SystemService) CheckVersion(ctx context.Context) (*model.VersionInfo, error) {
	dbVersion, err := s.migrator.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}

	pending, err := s.migrator.HasPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}

	info := &model.VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       strconv.FormatInt(dbVersion, 10),
		Features:        maps.Clone(s.features),
		MigrationNeeded: pending,
	}
	if pending {
		msg := "database schema is behind the application; restart the server to apply migrations"
		info.MigrationMessage = &msg
	}

	return info, nil
}
