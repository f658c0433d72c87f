package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-chat-analytics/internal/adapters/parser"
	"telegram-chat-analytics/internal/bot"
	"telegram-chat-analytics/internal/cache"
	"telegram-chat-analytics/internal/core/services"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/log"
	"telegram-chat-analytics/internal/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to YAML config")
	flag.Parse()

	// Загрузка конфигурации бота
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load bot config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to validate config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateBot(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to validate bot config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с маскировкой токена
	logger := log.NewLogger(cfg.Logging, os.Stdout, cfg.Bot.Token)
	slog.SetDefault(logger)
	if err := tgbotapi.SetLogger(log.NewTGBotAPIAdapter(logger)); err != nil {
		slog.Warn("failed to set telegram api logger", slog.String("error", err.Error()))
	}

	// Инициализация компонентов
	reports := cache.NewReportCache()
	loader := services.NewLoader(parser.NewJsonParser(), logger)
	analytics := services.NewAnalyticsService(services.WithTopMembers(cfg.Analytics.TopMembers))
	analyzer := usecase.NewAnalyzeChatUseCase(cfg, loader, analytics, reports, logger)

	b, err := bot.NewBot(cfg, analyzer, bot.NewSessionStore(), logger)
	if err != nil {
		slog.Error("failed to create bot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Bot created successfully, starting...")

	// Ожидание сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports.StartCleanupTicker(ctx, cfg.Analytics.CleanupInterval)

	// Start блокируется до отмены контекста
	b.Start(ctx)

	slog.Info("Bot stopped gracefully")
}
