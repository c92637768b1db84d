package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DIRECTORY_PAGE_SIZE", "")
	t.Setenv("DIRECTORY_DEBOUNCE", "")
	t.Setenv("DOCTOR_API_URL", "")

	cfg := Load()

	assert.Equal(t, 8, cfg.Directory.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.GetDebounceDuration())
	assert.Equal(t, "http://localhost:8080", cfg.DoctorAPI.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.GetDoctorAPITimeoutDuration())
	assert.False(t, cfg.Cache.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DIRECTORY_PAGE_SIZE", "12")
	t.Setenv("DIRECTORY_DEBOUNCE", "250ms")
	t.Setenv("DOCTOR_API_URL", "http://doctors.local:9000/")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TTL", "2m")

	cfg := Load()

	assert.Equal(t, 12, cfg.Directory.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.GetDebounceDuration())
	assert.Equal(t, "http://doctors.local:9000", cfg.DoctorAPI.BaseURL)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 2*time.Minute, cfg.GetCacheTTLDuration())
}

func TestInvalidDurationsFallBack(t *testing.T) {
	t.Setenv("DIRECTORY_DEBOUNCE", "soon")
	t.Setenv("SHUTDOWN_TIMEOUT", "5m")

	cfg := Load()

	assert.Equal(t, 500, cfg.Directory.DebounceMS)
	assert.Equal(t, 10, cfg.ShutdownTimeout)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.Service.Env = "development"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Database.Host = ""
	require.NoError(t, cfg.Validate())

	cfg.Directory.PageSize = 0
	cfg.Database.Host = "db"
	cfg.Database.Name = ""
	cfg.Service.Port = "eighty"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DIRECTORY_PAGE_SIZE")
	assert.Contains(t, err.Error(), "DB_NAME is required")
	assert.Contains(t, err.Error(), "PORT must be a valid number")
}

func TestBuildDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", Name: "doctor", User: "u", Password: "p",
		SSLMode: "disable", MaxConnections: 10,
	}
	assert.Equal(t, "postgresql://u:p@db:5432/doctor?sslmode=disable&pool_max_conns=10", db.BuildDSN())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{Service: ServiceConfig{Env: "Dev"}}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Service.Env = "prod"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestAuthTokenCookieDefault(t *testing.T) {
	t.Setenv("AUTH_TOKEN_COOKIE", "")
	assert.Equal(t, "access_token", Load().AuthTokenCookie)

	t.Setenv("AUTH_TOKEN_COOKIE", "session")
	assert.Equal(t, "session", Load().AuthTokenCookie)
}
