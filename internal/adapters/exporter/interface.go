package exporter

import (
	"fmt"
	"strings"

	"telegram-chat-analytics/internal/ports"
)

// NewExporter создает экспортер отчета по названию формата.
func NewExporter(format string) (ports.Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(), nil
	case "yaml", "yml":
		return NewYAMLExporter(), nil
	case "xlsx", "excel":
		return NewExcelExporter(), nil
	case "text", "console":
		return NewConsoleExporter(false), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, xlsx, text)", format)
	}
}
