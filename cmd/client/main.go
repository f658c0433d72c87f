package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"telegram-chat-analytics/internal/adapters/exporter"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/term"
)

// StateResponse — ответ сервера на загрузку файла.
type StateResponse struct {
	Status       string `json:"status"`
	Path         string `json:"path"`
	Filename     string `json:"filename,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func main() {
	var serverAddr string
	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "Server address")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Exactly one file path is required. Usage: client [flags] <result.json>")
	}
	path := flag.Arg(0)

	client := &http.Client{Timeout: 60 * time.Second}

	// Создание многочастной формы для загрузки файла
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Не удалось открыть файл %s: %v", path, err)
	}

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		_ = file.Close()
		log.Fatalf("Не удалось создать файл формы для %s: %v", path, err)
	}

	if _, err = io.Copy(part, file); err != nil {
		_ = file.Close()
		log.Fatalf("Не удалось записать данные файла %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		log.Printf("Warning: failed to close file %s: %v", path, err)
	}

	// Важно закрыть writer, чтобы записать завершающую границу
	if err := writer.Close(); err != nil {
		log.Fatalf("Не удалось закрыть multipart writer: %v", err)
	}

	resp, err := client.Post(serverAddr+"/api/v1/upload", writer.FormDataContentType(), &body)
	if err != nil {
		log.Fatalf("Не удалось отправить запрос: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		log.Fatalf("Файл %s превышает допустимый размер", path)
	}

	var st StateResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		log.Fatalf("Не удалось декодировать ответ: %v", err)
	}

	if st.Status != string(domain.StatusLoaded) {
		fmt.Println(st.ErrorMessage)
		os.Exit(1)
	}

	// Получение и вывод сводки
	reportResp, err := client.Get(serverAddr + "/api/v1" + st.Path)
	if err != nil {
		log.Fatalf("Не удалось получить отчет: %v", err)
	}
	defer reportResp.Body.Close()

	if reportResp.StatusCode != http.StatusOK {
		log.Fatalf("Сервер вернул статус для отчета: %d", reportResp.StatusCode)
	}

	var report domain.Report
	if err := json.NewDecoder(reportResp.Body).Decode(&report); err != nil {
		log.Fatalf("Не удалось декодировать отчет: %v", err)
	}

	styled := term.StyledOutput(os.Stdout)
	if err := exporter.NewConsoleExporter(styled).Export(os.Stdout, &report); err != nil {
		log.Fatalf("Не удалось вывести отчет: %v", err)
	}
}
