package testutil

import (
	"database/sql"
	"math/rand"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/mf-folio-backend/internal/database"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/repository"
	"github.com/ndewijer/mf-folio-backend/internal/service"
	"github.com/ndewijer/mf-folio-backend/internal/valuation"
)

// NewTestPortfolioService creates a PortfolioService over source with the default
// aggregator, throwaway metrics and a silent logger.
func NewTestPortfolioService(t *testing.T, source service.HoldingSource) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		source,
		valuation.New(),
		metrics.NewNop(),
		zerolog.Nop(),
	)
}

// NewTestLocalPortfolioService creates a PortfolioService reading from the local holding table.
func NewTestLocalPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return NewTestPortfolioService(t, repository.NewHoldingRepository(db))
}

// NewTestSyncService creates a SyncService pulling from source into db.
func NewTestSyncService(t *testing.T, db *sql.DB, source service.HoldingSource) *service.SyncService {
	t.Helper()

	return service.NewSyncService(
		source,
		repository.NewHoldingRepository(db),
		2,
		metrics.NewNop(),
		zerolog.Nop(),
	)
}

// NewTestSystemService creates a SystemService over a migrated test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		t.Fatalf("Failed to create migrator: %v", err)
	}

	return service.NewSystemService(db, migrator, map[string]bool{
		"xirr":           true,
		"local_holdings": true,
	})
}

// MakeRunID generates a sync run id.
//
// Example usage:
//
//	id := testutil.MakeRunID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeRunID() string {
	return uuid.NewString()
}

// MakeUserID generates a numeric upstream user id.
//
// Example usage:
//
//	userID := testutil.MakeUserID()
//	// Returns: "48213"
func MakeUserID() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return strconv.Itoa(10000 + rand.Intn(90000))
}

// MakeSchemeCode generates a six digit AMFI-style scheme code.
func MakeSchemeCode() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return strconv.Itoa(100000 + rand.Intn(900000))
}

// MakeFolioNumber generates a folio number such as "1234567/89".
func MakeFolioNumber() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return strconv.Itoa(1000000+rand.Intn(9000000)) + "/" + strconv.Itoa(10+rand.Intn(90))
}

// MakeFundName generates a unique fund name for testing.
//
// Example usage:
//
//	name := testutil.MakeFundName("Bluechip Fund")
//	// Returns: "Bluechip Fund XYZ789"
func MakeFundName(base string) string {
	if base == "" {
		base = "Fund"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
