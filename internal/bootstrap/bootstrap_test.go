package bootstrap

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-insights-go/internal/config"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/session"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:       config.DriverSQLite,
		SQLitePath:        filepath.Join(t.TempDir(), "dash.db"),
		StoreBatchSize:    100,
		DashboardTimezone: "UTC",
		AuthMode:          config.AuthNone,
	}

	st, err := Open(cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.NotNil(t, st.SQLite)
	assert.NotNil(t, st.Service)
	assert.Equal(t, "UTC", st.Service.Location().String())
	assert.Equal(t, session.NoAuth(), st.Auth)
}

func TestOpen_PostgRESTWithJWT(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:       config.DriverPostgREST,
		SupabaseURL:       "https://example.supabase.co",
		SupabaseKey:       "anon",
		DashboardTimezone: "America/Sao_Paulo",
		AuthMode:          config.AuthJWT,
		AuthJWTSecret:     "s3cret",
	}

	st, err := Open(cfg)
	require.NoError(t, err)

	assert.Nil(t, st.SQLite)
	assert.NoError(t, st.Close())
	assert.IsType(t, &session.Verifier{}, st.Auth)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(&config.Config{StoreDriver: "mongo", DashboardTimezone: "UTC"})
	assert.ErrorContains(t, err, "unknown store driver")

	_, err = Open(&config.Config{StoreDriver: config.DriverSQLite, DashboardTimezone: "Mars/Olympus"})
	assert.Error(t, err)
}
