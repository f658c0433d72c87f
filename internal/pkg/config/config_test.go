package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  read_timeout: 5s
  write_timeout: 20s
  idle_timeout: 2m
  shutdown_timeout: 15s
  max_upload_size_mb: 50
analytics:
  top_members: 5
  cache_ttl: 30m
  cleanup_interval: 10m
bot:
  token: "123456:ABCdef"
  excel_threshold: 40
  http_timeout: 45s
  render:
    name: 30
    messages: 10
    share: 7
logging:
  level: "debug"
  format: "text"
`

// partialYAML проверяет, что незаданные поля сохраняют значения по умолчанию.
const partialYAML = `
server:
  port: 9090
logging:
  level: "warn"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("Полный файл", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, fullYAML), cfg)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:8081", cfg.Address())
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
		assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())

		assert.Equal(t, 5, cfg.Analytics.TopMembers)
		assert.Equal(t, 30*time.Minute, cfg.Analytics.CacheTTL)
		assert.Equal(t, 10*time.Minute, cfg.Analytics.CleanupInterval)

		assert.Equal(t, "123456:ABCdef", cfg.Bot.Token)
		assert.Equal(t, 40, cfg.Bot.ExcelThreshold)
		assert.Equal(t, 45*time.Second, cfg.Bot.HTTPTimeout)
		assert.Equal(t, ColumnWidths{Name: 30, Messages: 10, Share: 7}, cfg.Bot.Render)

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
	})

	t.Run("Частичный файл сохраняет значения по умолчанию", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, partialYAML), cfg)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, DefaultServerHost, cfg.Server.Host)
		assert.Equal(t, DefaultCacheTTL, cfg.Analytics.CacheTTL)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	})

	t.Run("Отсутствующий файл не ошибка", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(filepath.Join(t.TempDir(), "non_existent_file.yml"), cfg)
		assert.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("Некорректный YAML", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, "invalid yaml: {"), cfg)
		assert.Error(t, err)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("Переменные окружения переопределяют файл", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("BOT_TOKEN", "999:env-token")
		t.Setenv("LOG_LEVEL", "error")
		t.Setenv("TOP_MEMBERS", "3")
		t.Setenv("CACHE_TTL", "5m")

		cfg, err := LoadConfig(createTempConfigFile(t, fullYAML))
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, "999:env-token", cfg.Bot.Token)
		assert.Equal(t, "error", cfg.Logging.Level)
		assert.Equal(t, 3, cfg.Analytics.TopMembers)
		assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	})

	t.Run("Некорректный порт", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "not-a-port")
		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("Некорректная длительность", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "forever")
		_, err := LoadConfig("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	validConfig := func(t *testing.T) *Config {
		cfg := defaultConfig()
		require.NoError(t, loadFromYAML(createTempConfigFile(t, fullYAML), cfg))
		return cfg
	}

	testCases := []struct {
		name    string
		mutator func(*Config)
		wantErr bool
	}{
		{"корректная конфигурация", func(c *Config) {}, false},
		{"неверный порт", func(c *Config) { c.Server.Port = 0 }, true},
		{"слишком большой порт", func(c *Config) { c.Server.Port = 70000 }, true},
		{"нулевой read_timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, true},
		{"нулевой shutdown_timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, true},
		{"нулевой лимит загрузки", func(c *Config) { c.Server.MaxUploadSizeMB = 0 }, true},
		{"нулевой top_members", func(c *Config) { c.Analytics.TopMembers = 0 }, true},
		{"нулевой cache_ttl", func(c *Config) { c.Analytics.CacheTTL = 0 }, true},
		{"нулевой cleanup_interval", func(c *Config) { c.Analytics.CleanupInterval = 0 }, true},
		{"неверный уровень логов", func(c *Config) { c.Logging.Level = "wrong" }, true},
		{"неверный формат логов", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"токен бота не нужен серверу", func(c *Config) { c.Bot.Token = "" }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutator(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBot(t *testing.T) {
	testCases := []struct {
		name    string
		mutator func(*Config)
		wantErr bool
	}{
		{"корректная конфигурация", func(c *Config) { c.Bot.Token = "123:abc" }, false},
		{"пустой токен", func(c *Config) { c.Bot.Token = "" }, true},
		{"токен-заглушка", func(c *Config) { c.Bot.Token = "YOUR_TELEGRAM_BOT_TOKEN" }, true},
		{"нулевой порог Excel", func(c *Config) { c.Bot.Token = "123:abc"; c.Bot.ExcelThreshold = 0 }, true},
		{"нулевая ширина колонки", func(c *Config) { c.Bot.Token = "123:abc"; c.Bot.Render.Name = 0 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutator(cfg)
			err := cfg.ValidateBot()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
