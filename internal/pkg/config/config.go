// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server содержит конфигурацию HTTP-сервера
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSizeMB int64         `yaml:"max_upload_size_mb"`
}

// Analytics содержит настройки построения отчетов
type Analytics struct {
	TopMembers      int           `yaml:"top_members"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// ColumnWidths определяет ширину колонок для текстового вывода.
type ColumnWidths struct {
	Name     int `yaml:"name"`
	Messages int `yaml:"messages"`
	Share    int `yaml:"share"`
}

// Bot содержит конфигурацию Telegram-бота
type Bot struct {
	Token          string        `yaml:"token"`
	ExcelThreshold int           `yaml:"excel_threshold"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	Render         ColumnWidths  `yaml:"render"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Config содержит конфигурацию приложения
type Config struct {
	Server    Server    `yaml:"server"`
	Analytics Analytics `yaml:"analytics"`
	Bot       Bot       `yaml:"bot"`
	Logging   Logging   `yaml:"logging"`
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл,
// затем переменные окружения (в том числе из .env).
func LoadConfig(path string) (*Config, error) {
	// Отсутствие .env не ошибка.
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
		},
		Analytics: Analytics{
			TopMembers:      DefaultTopMembers,
			CacheTTL:        DefaultCacheTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Bot: Bot{
			ExcelThreshold: DefaultExcelThreshold,
			HTTPTimeout:    DefaultHTTPTimeout,
			Render: ColumnWidths{
				Name:     DefaultNameColumnWidth,
				Messages: DefaultMessagesColumnWidth,
				Share:    DefaultShareColumnWidth,
			},
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// loadFromYAML накладывает значения из YAML-файла на cfg. Отсутствующий файл не ошибка.
func loadFromYAML(filename string, cfg *Config) error {
	if filename == "" {
		return nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// loadFromEnv переопределяет значения cfg переменными окружения, если они заданы.
func loadFromEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Bot.Token = getEnv("BOT_TOKEN", cfg.Bot.Token)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("TOP_MEMBERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый TOP_MEMBERS: %w", err)
		}
		cfg.Analytics.TopMembers = n
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("недопустимый CACHE_TTL: %w", err)
		}
		cfg.Analytics.CacheTTL = ttl
	}

	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes возвращает ограничение размера загружаемого файла в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadSizeMB << 20
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server.read_timeout, write_timeout и idle_timeout должны быть положительными")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должно быть положительным")
	}

	if c.Analytics.TopMembers <= 0 {
		return fmt.Errorf("analytics.top_members должно быть положительным целым числом")
	}

	if c.Analytics.CacheTTL <= 0 {
		return fmt.Errorf("analytics.cache_ttl должно быть положительным")
	}

	if c.Analytics.CleanupInterval <= 0 {
		return fmt.Errorf("analytics.cleanup_interval должно быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format должен быть json или text")
	}

	return nil
}

// ValidateBot дополнительно проверяет секцию bot; нужна только боту.
func (c *Config) ValidateBot() error {
	if c.Bot.Token == "" || c.Bot.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token is not configured")
	}
	if c.Bot.ExcelThreshold <= 0 {
		return fmt.Errorf("bot.excel_threshold must be positive")
	}
	if c.Bot.HTTPTimeout <= 0 {
		return fmt.Errorf("bot.http_timeout must be positive")
	}
	if c.Bot.Render.Name <= 0 || c.Bot.Render.Messages <= 0 || c.Bot.Render.Share <= 0 {
		return fmt.Errorf("bot.render widths must be positive")
	}
	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
