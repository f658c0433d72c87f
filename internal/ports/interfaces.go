package ports

import (
	"errors"
	"io"

	"telegram-chat-analytics/internal/domain"
)

// ErrNoFile возвращается источником, когда пользователь не выбрал файл.
var ErrNoFile = errors.New("файл не выбран")

// DataSource определяет интерфейс для получения исходных данных чата.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для парсинга данных чата.
type Parser interface {
	// Parse преобразует сырые данные в структурированную модель чата.
	Parse(data []byte) (*domain.ExportedChat, error)
}

// Loader превращает выбранный пользователем файл в новое состояние загрузки.
type Loader interface {
	// Load никогда не возвращает ошибку: любая неудача представлена состоянием Failed.
	// src == nil означает, что файл не выбран.
	Load(filename string, src DataSource) domain.LoadState
}

// AnalyticsService определяет набор чистых агрегаций над загруженным чатом.
// Ни один метод не изменяет переданный документ.
type AnalyticsService interface {
	CountMessages(chat *domain.ExportedChat) int
	MembersWithMessages(chat *domain.ExportedChat) []domain.MemberActivity
	ForwardedMessages(chat *domain.ExportedChat) []domain.NormalMessage
	GroupNameHistory(chat *domain.ExportedChat) []domain.TitleChange
	MessagesFrom(chat *domain.ExportedChat, memberID string) domain.MemberThread
	BuildReport(chat *domain.ExportedChat) *domain.Report
}

// Exporter определяет интерфейс для вывода отчета.
type Exporter interface {
	// Export записывает отчет в w.
	Export(w io.Writer, report *domain.Report) error
	// Extension возвращает расширение файла для этого формата.
	Extension() string
}
