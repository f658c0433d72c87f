package services

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"telegram-chat-analytics/internal/cache"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

// LoaderImpl реализует интерфейс Loader: источник -> парсер -> новое состояние.
type LoaderImpl struct {
	parser ports.Parser
	logger *slog.Logger
	newID  func() string
}

// NewLoader создает новый экземпляр LoaderImpl.
func NewLoader(parser ports.Parser, logger *slog.Logger) ports.Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoaderImpl{
		parser: parser,
		logger: logger.With("component", "loader"),
		newID:  uuid.NewString,
	}
}

// Load выполняет одну попытку загрузки. Каждая попытка получает свой AttemptID,
// а результат всегда является состоянием, а не ошибкой.
func (l *LoaderImpl) Load(filename string, src ports.DataSource) domain.LoadState {
	attemptID := l.newID()
	log := l.logger.With("attempt_id", attemptID, "filename", filename)

	if src == nil {
		log.Info("Файл не выбран")
		return domain.Failed{AttemptID: attemptID, Err: domain.NoFileSelected{}}
	}

	data, err := src.Fetch()
	if err != nil {
		if errors.Is(err, ports.ErrNoFile) {
			log.Info("Файл не выбран")
			return domain.Failed{AttemptID: attemptID, Err: domain.NoFileSelected{}}
		}
		log.Warn("Не удалось прочитать файл", "error", err)
		return domain.Failed{AttemptID: attemptID, Err: domain.ReadFailure{Filename: filename, Reason: err.Error()}}
	}

	chat, err := l.parser.Parse(data)
	if err != nil {
		log.Warn("Не удалось разобрать файл", "error", err)
		return domain.Failed{AttemptID: attemptID, Err: domain.ParseFailure{Filename: filename, Reason: err.Error()}}
	}

	digest := cache.CalculateHash(data)
	log.Info("Чат загружен", "chat", chat.Name, "events", len(chat.Events), "digest", digest)
	return domain.Loaded{
		AttemptID: attemptID,
		Filename:  filename,
		Digest:    digest,
		Chat:      chat,
	}
}
