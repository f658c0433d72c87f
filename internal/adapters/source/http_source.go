package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"telegram-chat-analytics/internal/ports"
)

// HTTPSource скачивает файл по прямой ссылке (например, файл из Telegram).
type HTTPSource struct {
	ctx      context.Context
	client   *http.Client
	url      string
	maxBytes int64
}

// NewHTTPSource создает источник для url. maxBytes <= 0 снимает ограничение размера.
func NewHTTPSource(ctx context.Context, client *http.Client, url string, maxBytes int64) ports.DataSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{ctx: ctx, client: client, url: url, maxBytes: maxBytes}
}

// Fetch выполняет GET-запрос и возвращает тело ответа.
func (s *HTTPSource) Fetch() ([]byte, error) {
	if s.url == "" {
		return nil, ports.ErrNoFile
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: bad status %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("file is larger than %d bytes", s.maxBytes)
	}
	return data, nil
}
