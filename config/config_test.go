package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LUNCH_API_URL", "")
	t.Setenv("LUNCH_API_TIMEOUT", "")
	t.Setenv("WORKDAYS_AHEAD", "")
	t.Setenv("AVAILABILITY_FAILURE_POLICY", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 5, cfg.Workdays)
	assert.Equal(t, "keep", cfg.AvailabilityFailurePolicy)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LUNCH_API_URL", "https://lunch.example.com/api")
	t.Setenv("LUNCH_API_TIMEOUT", "5")
	t.Setenv("LUNCH_API_RPS", "2.5")
	t.Setenv("WORKDAYS_AHEAD", "3")
	t.Setenv("AVAILABILITY_FAILURE_POLICY", "rollback")

	cfg := Load()
	assert.Equal(t, "https://lunch.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, 2.5, cfg.APIRequestsPerSecond)
	assert.Equal(t, 3, cfg.Workdays)
	assert.Equal(t, "rollback", cfg.AvailabilityFailurePolicy)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("LUNCH_API_TIMEOUT", "soon")
	t.Setenv("WORKDAYS_AHEAD", "-1")

	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 5, cfg.Workdays)
}

func TestInitDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	db, err := InitDB(path)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	assert.FileExists(t, path)
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://lunch.example.com,")

	cfg := Load()
	assert.Equal(t, []string{"http://localhost:5173", "https://lunch.example.com"}, cfg.CORSOrigins)
}
