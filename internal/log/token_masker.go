package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const (
	tokenMask  = "bot***:***masked-token***"
	secretMask = "***masked***"
)

// Токены бота в виде bot<id>:<secret>, в том числе внутри URL скачивания файлов
// (https://api.telegram.org/file/bot<id>:<secret>/documents/file_0.json).
var telegramTokenRegex = regexp.MustCompile(`\bbot\d+:[A-Za-z0-9_-]{35,}`)

// masker заменяет токены и явно переданные секреты.
type masker struct {
	secrets []string
}

func newMasker(secrets []string) *masker {
	m := &masker{}
	for _, s := range secrets {
		if s != "" {
			m.secrets = append(m.secrets, s)
		}
	}
	return m
}

func (m *masker) mask(text string) string {
	text = telegramTokenRegex.ReplaceAllString(text, tokenMask)
	for _, s := range m.secrets {
		text = strings.ReplaceAll(text, s, secretMask)
	}
	return text
}

// maskValue рекурсивно маскирует строки, ошибки и группы атрибутов.
func (m *masker) maskValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(m.mask(value.String()))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(m.mask(err.Error()))
		}
		return value
	case slog.KindLogValuer:
		return m.maskValue(value.Resolve())
	case slog.KindGroup:
		group := value.Group()
		masked := make([]slog.Attr, len(group))
		for i, attr := range group {
			masked[i] = slog.Attr{Key: attr.Key, Value: m.maskValue(attr.Value)}
		}
		return slog.GroupValue(masked...)
	default:
		return value
	}
}

// TokenMaskerHandler - обертка для slog.Handler, которая маскирует токены в логах
type TokenMaskerHandler struct {
	handler slog.Handler
	masker  *masker
}

// NewTokenMaskerHandler создает обработчик с маскировкой токенов и дополнительных секретов.
func NewTokenMaskerHandler(handler slog.Handler, secrets ...string) *TokenMaskerHandler {
	return &TokenMaskerHandler{
		handler: handler,
		masker:  newMasker(secrets),
	}
}

// Enabled реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Clone не копирует атрибуты в новую запись, они добавляются заново уже маскированными.
	r := slog.NewRecord(record.Time, record.Level, h.masker.mask(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(slog.Attr{Key: a.Key, Value: h.masker.maskValue(a.Value)})
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = slog.Attr{Key: attr.Key, Value: h.masker.maskValue(attr.Value)}
	}
	return &TokenMaskerHandler{
		handler: h.handler.WithAttrs(masked),
		masker:  h.masker,
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{
		handler: h.handler.WithGroup(name),
		masker:  h.masker,
	}
}
