package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"telegram-chat-analytics/internal/adapters/source"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/ports"
	"telegram-chat-analytics/internal/state"
)

// MessageNotFound — текст для несуществующих маршрутов.
const MessageNotFound = "The page you are looking for does not exist."

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ChatAnalyzer определяет интерфейс варианта использования, который загружает и анализирует чат.
type ChatAnalyzer interface {
	Load(store *state.Store, filename string, src ports.DataSource) domain.LoadState
	Report(store *state.Store) (*domain.Report, error)
	Members(store *state.Store) ([]domain.MemberActivity, int, error)
	Forwarded(store *state.Store) ([]domain.NormalMessage, error)
	Titles(store *state.Store) ([]domain.TitleChange, error)
	Thread(store *state.Store, memberID string) (domain.MemberThread, error)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	store      *state.Store
	analyzer   ChatAnalyzer
	logger     *slog.Logger
}

// New создает новый экземпляр Server
func New(cfg *config.Config, analyzer ChatAnalyzer, store *state.Store, logger *slog.Logger) (*Server, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if store == nil {
		store = state.NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		analyzer: analyzer,
		logger:   logger.With("component", "http"),
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, MessageNotFound)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/state", s.handleState)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", s.handleReport)
			r.Get("/members", s.handleMembers)
			r.Get("/forwarded", s.handleForwarded)
			r.Get("/titles", s.handleTitles)
			r.Get("/messages/{userID}", s.handleThread)
		})
	})

	return r
}

// requestLogger пишет одну запись slog на запрос.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// handleUpload загружает файл из multipart-поля "file" и заменяет текущее состояние.
// Отсутствие поля означает, что файл не выбран. Слишком большой запрос состояние не меняет.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadBytes()
	if r.ContentLength > maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var st domain.LoadState
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		case errors.Is(err, http.ErrNotMultipart):
			st = s.analyzer.Load(s.store, "", nil)
		default:
			s.logger.Warn("Не удалось разобрать форму", "error", err)
			writeError(w, http.StatusBadRequest, "malformed multipart form")
			return
		}
	} else {
		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			st = s.analyzer.Load(s.store, "", nil)
		case err != nil:
			writeError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		default:
			defer file.Close()
			st = s.analyzer.Load(s.store, header.Filename, source.NewReaderSource(file))
		}
	}

	status := http.StatusOK
	if _, ok := st.(domain.Failed); ok {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, newStateResponse(st))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateResponse(s.store.Get()))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyzer.Report(s.store)
	if err != nil {
		s.writeAnalyticsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	members, total, err := s.analyzer.Members(s.store)
	if err != nil {
		s.writeAnalyticsError(w, err)
		return
	}

	page, pageSize, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := (page - 1) * pageSize
	if start > len(members) {
		start = len(members)
	}
	end := start + pageSize
	if end > len(members) {
		end = len(members)
	}

	data := make([]memberResponse, 0, end-start)
	for i, m := range members[start:end] {
		data = append(data, memberResponse{
			Rank:     start + i + 1,
			ID:       m.ID,
			Name:     m.Identity,
			Messages: m.MessageCount,
			Share:    m.Share(total),
		})
	}

	resp := membersResponse{TotalMessages: total, Data: data}
	resp.Pagination.CurrentPage = page
	resp.Pagination.PageSize = pageSize
	resp.Pagination.TotalItems = len(members)
	resp.Pagination.TotalPages = (len(members) + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleForwarded(w http.ResponseWriter, r *http.Request) {
	messages, err := s.analyzer.Forwarded(s.store)
	if err != nil {
		s.writeAnalyticsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(messages),
		"messages": messages,
	})
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	history, err := s.analyzer.Titles(s.store)
	if err != nil {
		s.writeAnalyticsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.analyzer.Thread(s.store, chi.URLParam(r, "userID"))
	if err != nil {
		s.writeAnalyticsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

// writeAnalyticsError отправляет клиента на экран загрузки, если документа нет.
func (s *Server) writeAnalyticsError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrNotLoaded) {
		view := s.store.View()
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": err.Error(),
			"view":  string(view),
			"path":  view.Path(),
		})
		return
	}
	s.logger.Error("Ошибка аналитики", "error", err)
	writeError(w, http.StatusInternalServerError, domain.MessageGeneric)
}

func parsePagination(r *http.Request) (int, int, error) {
	page, pageSize := 1, defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = n
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			return 0, 0, errors.New("page_size must be between 1 and 500")
		}
		pageSize = n
	}
	return page, pageSize, nil
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}
