package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"telegram-chat-analytics/internal/adapters/parser"
	"telegram-chat-analytics/internal/cache"
	"telegram-chat-analytics/internal/core/services"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/log"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/server"
	"telegram-chat-analytics/internal/state"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run(args []string) error {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := flags.String("config", "config.yml", "path to YAML config")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Инициализация логгера
	logger := log.NewLogger(cfg.Logging, os.Stdout, cfg.Bot.Token)
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Инициализация зависимостей
	reports := cache.NewReportCache()
	loader := services.NewLoader(parser.NewJsonParser(), logger)
	analytics := services.NewAnalyticsService(services.WithTopMembers(cfg.Analytics.TopMembers))
	analyzer := usecase.NewAnalyzeChatUseCase(cfg, loader, analytics, reports, logger)

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, analyzer, state.NewStore(), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// 6. Запуск сервера, очистки кеша и graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	reports.StartCleanupTicker(gctx, cfg.Analytics.CleanupInterval)

	g.Go(func() error {
		slog.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Signal received, shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Application exited gracefully")
	return nil
}
