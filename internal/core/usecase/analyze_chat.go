package usecase

import (
	"errors"
	"log/slog"
	"time"

	"telegram-chat-analytics/internal/cache"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/ports"
	"telegram-chat-analytics/internal/state"
)

// ErrNotLoaded возвращается, когда аналитика запрошена до успешной загрузки документа.
var ErrNotLoaded = errors.New("документ не загружен")

// AnalyzeChatUseCase связывает загрузчик, хранилище состояния и аналитику.
// Общий для HTTP-сервера, бота и CLI.
type AnalyzeChatUseCase struct {
	loader    ports.Loader
	analytics ports.AnalyticsService
	reports   *cache.ReportCache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewAnalyzeChatUseCase создает новый экземпляр AnalyzeChatUseCase.
func NewAnalyzeChatUseCase(
	cfg *config.Config,
	loader ports.Loader,
	analytics ports.AnalyticsService,
	reports *cache.ReportCache,
	logger *slog.Logger,
) *AnalyzeChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeChatUseCase{
		loader:    loader,
		analytics: analytics,
		reports:   reports,
		cacheTTL:  cfg.Analytics.CacheTTL,
		logger:    logger.With("component", "usecase"),
	}
}

// Load выполняет попытку загрузки и записывает результат в store.
func (uc *AnalyzeChatUseCase) Load(store *state.Store, filename string, src ports.DataSource) domain.LoadState {
	st := uc.loader.Load(filename, src)
	store.Set(st)

	if failed, ok := st.(domain.Failed); ok {
		uc.logger.Info("Загрузка не удалась", "attempt_id", failed.AttemptID, "kind", failed.Err.Kind())
	}
	return st
}

// Report возвращает сводку по загруженному документу. Отчет кешируется по дайджесту файла.
func (uc *AnalyzeChatUseCase) Report(store *state.Store) (*domain.Report, error) {
	loaded, ok := store.Loaded()
	if !ok {
		return nil, ErrNotLoaded
	}

	build := func() *domain.Report {
		uc.logger.Debug("Построение отчета", "digest", loaded.Digest)
		return uc.analytics.BuildReport(loaded.Chat)
	}

	if uc.reports == nil || loaded.Digest == "" {
		return build(), nil
	}
	return uc.reports.GetOrBuild(loaded.Digest, uc.cacheTTL, build), nil
}

// Members возвращает полный рейтинг участников.
func (uc *AnalyzeChatUseCase) Members(store *state.Store) ([]domain.MemberActivity, int, error) {
	report, err := uc.Report(store)
	if err != nil {
		return nil, 0, err
	}
	return report.Members, report.TotalMessages, nil
}

// Titles возвращает историю названий группы.
func (uc *AnalyzeChatUseCase) Titles(store *state.Store) ([]domain.TitleChange, error) {
	report, err := uc.Report(store)
	if err != nil {
		return nil, err
	}
	return report.GroupNameHistory, nil
}

// Forwarded возвращает пересланные сообщения.
func (uc *AnalyzeChatUseCase) Forwarded(store *state.Store) ([]domain.NormalMessage, error) {
	loaded, ok := store.Loaded()
	if !ok {
		return nil, ErrNotLoaded
	}
	return uc.analytics.ForwardedMessages(loaded.Chat), nil
}

// Thread возвращает сообщения одного участника.
func (uc *AnalyzeChatUseCase) Thread(store *state.Store, memberID string) (domain.MemberThread, error) {
	loaded, ok := store.Loaded()
	if !ok {
		return domain.MemberThread{}, ErrNotLoaded
	}
	return uc.analytics.MessagesFrom(loaded.Chat, memberID), nil
}
