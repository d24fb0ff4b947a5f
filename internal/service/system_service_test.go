package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
	"github.com/ndewijer/portfolio-radar/internal/version"
)

// TestSystemService_CheckHealth tests the database health check.
//
// WHY: The health endpoint is what the container orchestrator polls.
func TestSystemService_CheckHealth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	require.NoError(t, svc.CheckHealth())

	db.Close()
	assert.Error(t, svc.CheckHealth())
}

// TestSystemService_CheckVersion tests version reporting on a migrated database.
//
// WHY: A freshly migrated database is at the latest schema, so no migration
// must be requested, and the configured features are reported back.
func TestSystemService_CheckVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	info, err := svc.CheckVersion()
	require.NoError(t, err)

	assert.Equal(t, version.Version, info.AppVersion)
	assert.Equal(t, "2", info.DbVersion)
	assert.False(t, info.MigrationNeeded)
	assert.Nil(t, info.MigrationMessage)
	assert.True(t, info.Features["scheduled_refresh"])

	t.Run("nil features", func(t *testing.T) {
		info, err := service.NewSystemService(db, nil).CheckVersion()
		require.NoError(t, err)
		assert.NotNil(t, info.Features)
	})
}
