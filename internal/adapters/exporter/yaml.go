package exporter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

// YAMLExporter выводит отчет в YAML.
type YAMLExporter struct{}

// NewYAMLExporter создает новый экземпляр YAMLExporter.
func NewYAMLExporter() ports.Exporter {
	return &YAMLExporter{}
}

// Export записывает отчет в w.
func (e *YAMLExporter) Export(w io.Writer, report *domain.Report) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as yaml: %w", err)
	}
	return nil
}

// Extension возвращает расширение файла.
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
