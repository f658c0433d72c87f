package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"telegram-chat-analytics/internal/adapters/exporter"
	"telegram-chat-analytics/internal/adapters/parser"
	"telegram-chat-analytics/internal/adapters/source"
	"telegram-chat-analytics/internal/core/services"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/log"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/pkg/term"
	"telegram-chat-analytics/internal/state"
)

type rootOptions struct {
	configPath string
	plain      bool
}

// app — загруженный документ и все, что нужно для его анализа.
type app struct {
	analyzer *usecase.AnalyzeChatUseCase
	store    *state.Store
	console  *exporter.ConsoleExporter
}

// openChat загружает файл. Неудачная загрузка возвращается как ошибка с текстом для пользователя.
func openChat(cmd *cobra.Command, opts *rootOptions, filename string) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	// Логи CLI идут в stderr и не смешиваются с отчетом.
	level := "warn"
	if cfg.Logging.Level == "debug" {
		level = "debug"
	}
	logger := log.NewLogger(config.Logging{Level: level, Format: "text"}, cmd.ErrOrStderr())

	loader := services.NewLoader(parser.NewJsonParser(), logger)
	analytics := services.NewAnalyticsService(services.WithTopMembers(cfg.Analytics.TopMembers))
	a := &app{
		// CLI обрабатывает один файл за запуск, кеш отчетов не нужен.
		analyzer: usecase.NewAnalyzeChatUseCase(cfg, loader, analytics, nil, logger),
		store:    state.NewStore(),
		console:  exporter.NewConsoleExporter(!opts.plain && term.StyledOutput(cmd.OutOrStdout())),
	}

	st := a.analyzer.Load(a.store, filename, source.NewCliSource(filename))
	if failed, ok := st.(domain.Failed); ok {
		logger.Debug("load failed", slog.String("error", failed.Err.Error()))
		return nil, errors.New(domain.UserMessage(failed.Err))
	}
	return a, nil
}
