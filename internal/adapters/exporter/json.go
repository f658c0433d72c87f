package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

// JSONExporter выводит отчет в JSON с отступами.
type JSONExporter struct{}

// NewJSONExporter создает новый экземпляр JSONExporter.
func NewJSONExporter() ports.Exporter {
	return &JSONExporter{}
}

// Export записывает отчет в w.
func (e *JSONExporter) Export(w io.Writer, report *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as json: %w", err)
	}
	return nil
}

// Extension возвращает расширение файла.
func (e *JSONExporter) Extension() string {
	return "json"
}
