package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

// ErrNotAnObject возвращается, когда корень документа не является JSON-объектом.
var ErrNotAnObject = errors.New("root of export must be a JSON object")

// JsonParser реализует интерфейс Parser для разбора JSON данных.
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// Parse преобразует срез байт с JSON в структуру ExportedChat.
// Проверяется только корректность JSON и форма корня; отсутствующие поля остаются пустыми.
func (p *JsonParser) Parse(data []byte) (*domain.ExportedChat, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to unmarshal json: empty input")
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("failed to unmarshal json: %w", ErrNotAnObject)
	}

	var chat domain.ExportedChat
	if err := json.Unmarshal(trimmed, &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	return &chat, nil
}
