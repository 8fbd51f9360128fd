package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ENV", "STORAGE_DRIVER", "DATABASE_URL", "DB_MAX_OPEN_CONNS",
	"LOCK_TIMEOUT", "REQUEST_TIMEOUT", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "JWT_SECRET", "RUN_MIGRATIONS",
}

// clearEnv unsets every config variable for the test and runs it from an
// empty directory so no stray .env file is picked up.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Empty(t, cfg.JWTSecret)
	assert.True(t, cfg.RunMigrations)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOCK_TIMEOUT", "250ms")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout)
	assert.Empty(t, cfg.RedisAddr, "an empty REDIS_ADDR disables Redis")
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.RunMigrations)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\nJWT_SECRET=s3cret\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PORT")
		_ = os.Unsetenv("JWT_SECRET")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"STORAGE_DRIVER", "mongo"},
		{"DB_MAX_OPEN_CONNS", "many"},
		{"DB_MAX_OPEN_CONNS", "0"},
		{"LOCK_TIMEOUT", "soon"},
		{"REQUEST_TIMEOUT", "-1s"},
		{"RUN_MIGRATIONS", "maybe"},
		{"REDIS_DB", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
