package source

import (
	"fmt"
	"io"

	"telegram-chat-analytics/internal/ports"
)

// ReaderSource читает данные из io.Reader (тело multipart-запроса, stdin).
// Ограничение размера задается вызывающей стороной.
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource создает новый экземпляр ReaderSource.
func NewReaderSource(r io.Reader) ports.DataSource {
	return &ReaderSource{r: r}
}

// Fetch вычитывает reader целиком.
func (s *ReaderSource) Fetch() ([]byte, error) {
	if s.r == nil {
		return nil, ports.ErrNoFile
	}

	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}
