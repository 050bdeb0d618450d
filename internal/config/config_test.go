package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/awakra/to-do-list/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir меняет рабочую директорию на время теста (аналог t.Chdir из Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// TestLoad_FromEnv тестирует загрузку значений из окружения
func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REMINDER_TIME", "07:45")
	t.Setenv("SESSION_REMEMBER_DURATION", "48h")
	t.Setenv("REPOSITORY_TYPE", "inmemory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.SecretKey)
	assert.Equal(t, ":9090", cfg.GetServerAddr())
	assert.Equal(t, 48*time.Hour, cfg.Session.RememberDuration)
	assert.Equal(t, config.RepositoryInMemory, cfg.Repository.Type)

	hour, minute, err := cfg.Reminder.Clock()
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 45, minute)
}

// TestLoad_Defaults тестирует значения по умолчанию
func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5*24*time.Hour, cfg.Session.RememberDuration)
	assert.Equal(t, 30*time.Minute, cfg.ResetToken.TTL)
	assert.Equal(t, "08:00", cfg.Reminder.Time)
	assert.Equal(t, config.RepositoryPostgres, cfg.Repository.Type)
	assert.False(t, cfg.MailEnabled())
}

// TestConfig_Validate тестирует проверку конфигурации
func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			SecretKey:  "secret",
			Reminder:   config.ReminderConfig{Time: "08:00"},
			ResetToken: config.ResetTokenConfig{TTL: time.Minute},
			Repository: config.RepositoryConfig{Type: config.RepositoryPostgres},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "success - valid", mutate: func(c *config.Config) {}},
		{name: "error - no secret", mutate: func(c *config.Config) { c.SecretKey = "" }, wantErr: true},
		{name: "error - bad reminder time", mutate: func(c *config.Config) { c.Reminder.Time = "25:99" }, wantErr: true},
		{name: "error - unknown repository", mutate: func(c *config.Config) { c.Repository.Type = "sqlite" }, wantErr: true},
		{name: "error - zero token ttl", mutate: func(c *config.Config) { c.ResetToken.TTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
