package source

import (
	"telegram-chat-analytics/internal/ports"
)

// MemorySource реализует интерфейс DataSource для данных, уже лежащих в памяти.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает копию данных. nil означает, что файл не выбран.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, ports.ErrNoFile
	}

	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return dataCopy, nil
}
