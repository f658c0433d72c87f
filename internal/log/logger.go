// Package log собирает slog-логгер приложения и адаптеры для сторонних библиотек.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"telegram-chat-analytics/internal/pkg/config"
)

// ParseLevel переводит уровень из конфигурации в slog.Level. Неизвестное значение дает info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger создает логгер по секции logging. Все записи проходят через маскировщик токенов.
func NewLogger(cfg config.Logging, w io.Writer, secrets ...string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(NewTokenMaskerHandler(handler, secrets...))
}

// TGBotAPIAdapter адаптирует slog.Logger под интерфейс логгера,
// который ожидает библиотека go-telegram-bot-api/v5.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
}

// NewTGBotAPIAdapter создает адаптер с пометкой компонента.
func NewTGBotAPIAdapter(logger *slog.Logger) *TGBotAPIAdapter {
	return &TGBotAPIAdapter{Logger: logger.With("component", "tgbotapi")}
}

// Println реализует метод интерфейса tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Println(v ...interface{}) {
	a.Logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

// Printf реализует метод интерфейса tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Printf(format string, v ...interface{}) {
	a.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
