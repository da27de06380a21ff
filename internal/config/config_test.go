package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "data/helpdesk.db", cfg.Database.DSN)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "Open", cfg.Ticket.DefaultStatus)
	assert.Equal(t, "Medium", cfg.Ticket.DefaultPriority)
	assert.Equal(t, "Completed", cfg.Ticket.CompletedStatus)
	assert.Equal(t, "High", cfg.Ticket.HighPriority)
	assert.Empty(t, cfg.Seed.AdminEmail)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helpdesk.yaml")
	content := `
server:
  addr: ":9090"
  write_timeout: 10s
database:
  driver: postgres
  dsn: postgres://helpdesk@localhost/helpdesk?sslmode=disable
auth:
  jwt_secret: file-secret
  token_ttl: 2h
ticket:
  completed_status: Done
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "Done", cfg.Ticket.CompletedStatus)
	assert.Equal(t, "Open", cfg.Ticket.DefaultStatus, "unset keys keep their default")

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HELPDESK_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("HELPDESK_DATABASE_DSN", "/tmp/other.db")
	t.Setenv("HELPDESK_SEED_ADMIN_EMAIL", "root@example.com")
	t.Setenv("HELPDESK_AUTH_COOKIE_SECURE", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(t, "root@example.com", cfg.Seed.AdminEmail)
	assert.True(t, cfg.Auth.CookieSecure)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"HELPDESK_DATABASE_DRIVER": "mysql"}},
		{name: "bad log level", env: map[string]string{"HELPDESK_LOGGING_LEVEL": "loud"}},
		{name: "bad log format", env: map[string]string{"HELPDESK_LOGGING_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
