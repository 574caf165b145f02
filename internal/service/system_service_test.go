package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	tu "github.com/ndewijer/mf-folio-backend/internal/testutil"
	"github.com/ndewijer/mf-folio-backend/internal/version"
)

// TestSystemService_CheckHealth tests the database ping.
//
// WHY: Container health checks hit /api/system/health; a closed pool must report unhealthy.
func TestSystemService_CheckHealth(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		svc := tu.NewTestSystemService(t, db)

		assert.NoError(t, svc.CheckHealth(context.Background()))
	})

	t.Run("closed database", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		svc := tu.NewTestSystemService(t, db)
		require.NoError(t, db.Close())

		assert.Error(t, svc.CheckHealth(context.Background()))
	})
}

// TestSystemService_CheckVersion tests version and migration reporting.
//
// WHY: Front-ends gate features on this response and operators use it to spot a
// schema that lags the binary.
func TestSystemService_CheckVersion(t *testing.T) {
	t.Run("migrated database", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		svc := tu.NewTestSystemService(t, db)

		info, err := svc.CheckVersion(context.Background())
		require.NoError(t, err)

		assert.Equal(t, version.Version, info.AppVersion)
		assert.Equal(t, "2", info.DbVersion)
		assert.False(t, info.MigrationNeeded)
		assert.Nil(t, info.MigrationMessage)
		assert.True(t, info.Features["xirr"])
	})

	t.Run("closed database", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		svc := tu.NewTestSystemService(t, db)
		require.NoError(t, db.Close())

		_, err := svc.CheckVersion(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrFailedToGetVersionInfo)
	})
}
