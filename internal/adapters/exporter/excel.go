package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

// Названия листов книги.
const (
	SheetOverview = "Обзор"
	SheetMembers  = "Участники"
	SheetTitles   = "История названий"
)

// ExcelExporter выводит отчет в книгу xlsx из трех листов.
type ExcelExporter struct{}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter() ports.Exporter {
	return &ExcelExporter{}
}

// Export записывает книгу в w.
func (e *ExcelExporter) Export(w io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// Лист по умолчанию переименовывается в обзор.
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	overview := [][]interface{}{
		{"Чат", report.Name},
		{"Тип", report.TypeLabel},
		{"Сообщений", report.TotalMessages},
		{"Участников", report.TotalMembers},
		{"Пересланных", report.TotalForwarded},
	}
	if err := writeRows(f, SheetOverview, overview); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetMembers); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetMembers, err)
	}
	members := [][]interface{}{{"#", "ID", "Имя", "Сообщений", "Доля"}}
	for i, m := range report.Members {
		members = append(members, []interface{}{i + 1, m.ID, m.Identity, m.MessageCount, m.Share(report.TotalMessages)})
	}
	if err := writeRows(f, SheetMembers, members); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetTitles); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetTitles, err)
	}
	titles := [][]interface{}{{"Дата", "Кто", "Название"}}
	for _, h := range report.GroupNameHistory {
		titles = append(titles, []interface{}{h.Date, h.Actor, h.Title})
	}
	if err := writeRows(f, SheetTitles, titles); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}

// Extension возвращает расширение файла.
func (e *ExcelExporter) Extension() string {
	return "xlsx"
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
