package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("RELAY_TIMEOUT", "")
	t.Setenv("PROJECT_API_URL", "http://projects:8082/")

	cfg := Load(ServiceTask)

	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.RelayTimeout)
	assert.Equal(t, "http://projects:8082", cfg.ProjectAPIURL)
	assert.Equal(t, 1024, cfg.UsernameCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.UsernameCacheTTL)
	assert.Equal(t, "@hourly", cfg.TokenPurgeSchedule)
	assert.Empty(t, cfg.PolicyFile)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RELAY_TIMEOUT", "250ms")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")
	t.Setenv("LOG_MAX_FILES", "3")

	cfg := Load(ServiceProject)

	assert.Equal(t, 250*time.Millisecond, cfg.RelayTimeout)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 3, cfg.LogMaxFiles)
}

func TestTablePrefix(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"prod", ""},
		{"test", "test_"},
		{"dev", "dev_"},
		{"staging", "dev_"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, getTablePrefix(tt.env))
		})
	}
}

func TestValidate(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid auth",
			cfg:  Config{Service: ServiceAuth, DatabaseURL: "postgres://x", JWTSecret: secret},
		},
		{
			name:    "missing database",
			cfg:     Config{Service: ServiceAuth, JWTSecret: secret},
			wantErr: true,
		},
		{
			name:    "short secret",
			cfg:     Config{Service: ServiceAuth, DatabaseURL: "postgres://x", JWTSecret: "short"},
			wantErr: true,
		},
		{
			name:    "auth needs secret even with jwks",
			cfg:     Config{Service: ServiceAuth, DatabaseURL: "postgres://x", JWTJWKSURL: "http://keys"},
			wantErr: true,
		},
		{
			name: "task verifies via jwks",
			cfg: Config{
				Service: ServiceTask, DatabaseURL: "postgres://x", JWTJWKSURL: "http://keys",
				AuthAPIURL: "http://auth", ProjectAPIURL: "http://projects",
			},
		},
		{
			name:    "unknown service",
			cfg:     Config{Service: "billing", DatabaseURL: "postgres://x", JWTSecret: secret},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupLogFileRotates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"task-2020-01-01T00-00-00.log", "task-2020-01-02T00-00-00.log", "auth-2020-01-01T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, "task", 2)
	require.NoError(t, err)
	defer f.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "task-*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.NotContains(t, matches, filepath.Join(dir, "task-2020-01-01T00-00-00.log"))
	assert.FileExists(t, filepath.Join(dir, "auth-2020-01-01T00-00-00.log"))
}
