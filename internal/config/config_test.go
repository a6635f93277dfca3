package config_test

import (
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/service-order-scheduler/internal/config"
)

const adminHash = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHQ$a2V5a2V5a2V5"

func setAdmin(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SCHEDULER_ADMIN_EMAIL", "Admin@Example.com")
	t.Setenv("SCHEDULER_ADMIN_PASSWORD_HASH", adminHash)
}

func TestLoad_Defaults(t *testing.T) {
	setAdmin(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3000", cfg.BackendBaseURL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, ":memory:", cfg.SessionDSN)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, 3000, cfg.Backend.HTTPPort)
	assert.Equal(t, "file:backend.db", cfg.Backend.SQLiteDSN)
}

func TestLoad_Environment(t *testing.T) {
	setAdmin(t)
	t.Setenv("SCHEDULER_HTTP_PORT", "9090")
	t.Setenv("SCHEDULER_BACKEND_BASE_URL", "https://erp.example.com/")
	t.Setenv("SCHEDULER_REFRESH_INTERVAL", "1m")
	t.Setenv("SCHEDULER_BACKEND_HTTP_PORT", "4000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "https://erp.example.com", cfg.BackendBaseURL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 4000, cfg.Backend.HTTPPort)
}

func TestLoad_MissingAdmin(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SCHEDULER_ADMIN_EMAIL", "")
	t.Setenv("SCHEDULER_ADMIN_PASSWORD_HASH", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t, "missing required settings: SCHEDULER_ADMIN_EMAIL, SCHEDULER_ADMIN_PASSWORD_HASH", err.Error())

	cfg, err := config.LoadBackend()
	require.NoError(t, err, "the dev backend needs no administrator")
	assert.Equal(t, 3000, cfg.Backend.HTTPPort)
}

func TestLoad_InvalidValues(t *testing.T) {
	setAdmin(t)
	t.Setenv("SCHEDULER_HTTP_PORT", "http")
	t.Setenv("SCHEDULER_BACKEND_BASE_URL", "localhost:3000")
	t.Setenv("SCHEDULER_SESSION_TTL", "0s")
	t.Setenv("SCHEDULER_ADMIN_PASSWORD_HASH", "plain-text")

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t,
		"invalid settings: SCHEDULER_HTTP_PORT, SCHEDULER_BACKEND_BASE_URL, SCHEDULER_SESSION_TTL, SCHEDULER_ADMIN_PASSWORD_HASH",
		err.Error())
}

func TestLoad_FileNotExist(t *testing.T) {
	setAdmin(t)
	t.Setenv("CONFIG_PATH", "./invalid/path.yaml")

	_, err := config.Load()
	require.EqualError(t, err, "config file does not exist: ./invalid/path.yaml")
}

func TestLoad_ReadError(t *testing.T) {
	setAdmin(t)
	tmpFile := filet.TmpFile(t, "", "::::bad_yaml")
	defer filet.CleanUp(t)
	t.Setenv("CONFIG_PATH", tmpFile.Name())

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestLoad_File(t *testing.T) {
	setAdmin(t)
	configContent := `
---
env: "production"
http_port: 8081
backend_base_url: "http://backend:3000"
session_ttl: "2h"
backend:
  http_port: 3100
  sqlite_dsn: "file:/data/backend.db"
`
	filet.File(t, "scheduler.yaml", configContent)
	defer filet.CleanUp(t)
	t.Setenv("CONFIG_PATH", "scheduler.yaml")
	t.Setenv("SCHEDULER_HTTP_PORT", "8082")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8082, cfg.HTTPPort, "environment overrides the file")
	assert.Equal(t, "http://backend:3000", cfg.BackendBaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3100, cfg.Backend.HTTPPort)
	assert.Equal(t, "file:/data/backend.db", cfg.Backend.SQLiteDSN)
}
