package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telegram-chat-analytics/internal/adapters/parser"
	"telegram-chat-analytics/internal/cache"
	"telegram-chat-analytics/internal/core/services"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/ports"
	"telegram-chat-analytics/internal/state"
)

const chatJSON = `{
	"name": "Cats",
	"type": "private_group",
	"id": 42,
	"messages": [
		{"id": 1, "type": "service", "date": "2020-01-05T10:11:12", "actor": "Alice", "actor_id": "user1", "action": "create_group", "title": "Cats", "members": ["Bob"]},
		{"id": 2, "type": "message", "date": "2020-01-05T10:12:00", "from": "Alice", "from_id": "user1", "text": "hi"},
		{"id": 3, "type": "message", "date": "2020-01-05T10:13:00", "from": "Bob", "from_id": "user2", "text": ["see ", {"type": "link", "text": "this"}], "forwarded_from": "News"},
		{"id": 4, "type": "message", "date": "2020-01-05T10:14:00", "from": "Alice", "from_id": "user1", "text": ""}
	]
}`

// mockAnalyzer — мок ChatAnalyzer для проверки обработки ошибок.
type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Load(store *state.Store, filename string, src ports.DataSource) domain.LoadState {
	return m.Called(store, filename, src).Get(0).(domain.LoadState)
}

func (m *mockAnalyzer) Report(store *state.Store) (*domain.Report, error) {
	args := m.Called(store)
	if res := args.Get(0); res != nil {
		return res.(*domain.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyzer) Members(store *state.Store) ([]domain.MemberActivity, int, error) {
	args := m.Called(store)
	if res := args.Get(0); res != nil {
		return res.([]domain.MemberActivity), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockAnalyzer) Forwarded(store *state.Store) ([]domain.NormalMessage, error) {
	args := m.Called(store)
	if res := args.Get(0); res != nil {
		return res.([]domain.NormalMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyzer) Titles(store *state.Store) ([]domain.TitleChange, error) {
	args := m.Called(store)
	if res := args.Get(0); res != nil {
		return res.([]domain.TitleChange), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyzer) Thread(store *state.Store, memberID string) (domain.MemberThread, error) {
	args := m.Called(store, memberID)
	return args.Get(0).(domain.MemberThread), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.Server{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			MaxUploadSizeMB: 1,
		},
		Analytics: config.Analytics{TopMembers: 10, CacheTTL: time.Minute},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	logger := discardLogger()
	uc := usecase.NewAnalyzeChatUseCase(cfg,
		services.NewLoader(parser.NewJsonParser(), logger),
		services.NewAnalyticsService(services.WithTopMembers(cfg.Analytics.TopMembers)),
		cache.NewReportCache(),
		logger,
	)
	srv, err := New(cfg, uc, state.NewStore(), logger)
	require.NoError(t, err)
	return srv
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.HTTPServer.Handler.ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	if field != "" {
		fw, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("comment", "no file"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &b)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}

func TestServer(t *testing.T) {
	t.Run("Проверка работоспособности", func(t *testing.T) {
		rr := do(newTestServer(t), httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]string
		decode(t, rr, &resp)
		assert.Equal(t, "ok", resp["status"])
	})

	t.Run("Начальное состояние", func(t *testing.T) {
		rr := do(newTestServer(t), httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp stateResponse
		decode(t, rr, &resp)
		assert.Equal(t, domain.StatusEmpty, resp.Status)
		assert.Equal(t, domain.ViewUpload, resp.View)
		assert.Equal(t, "/", resp.Path)
	})

	t.Run("Неизвестный маршрут", func(t *testing.T) {
		rr := do(newTestServer(t), httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		var resp map[string]string
		decode(t, rr, &resp)
		assert.Equal(t, MessageNotFound, resp["error"])
	})
}

func TestUpload(t *testing.T) {
	t.Run("Успешная загрузка и аналитика", func(t *testing.T) {
		srv := newTestServer(t)

		rr := do(srv, uploadRequest(t, "file", "result.json", chatJSON))
		require.Equal(t, http.StatusOK, rr.Code)
		var st stateResponse
		decode(t, rr, &st)
		assert.Equal(t, domain.StatusLoaded, st.Status)
		assert.Equal(t, domain.ViewResults, st.View)
		assert.Equal(t, "/analytics", st.Path)
		assert.Equal(t, "result.json", st.Filename)
		require.NotNil(t, st.Chat)
		assert.Equal(t, 4, st.Chat.Events)

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var report domain.Report
		decode(t, rr, &report)
		assert.Equal(t, "Cats", report.Name)
		assert.Equal(t, "private group", report.TypeLabel)
		assert.Equal(t, 3, report.TotalMessages)
		assert.Equal(t, 2, report.TotalMembers)
		assert.Equal(t, 1, report.TotalForwarded)
		require.Len(t, report.GroupNameHistory, 1)

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/members?page=1&page_size=1", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var members membersResponse
		decode(t, rr, &members)
		assert.Equal(t, 3, members.TotalMessages)
		assert.Equal(t, 2, members.Pagination.TotalItems)
		assert.Equal(t, 2, members.Pagination.TotalPages)
		require.Len(t, members.Data, 1)
		assert.Equal(t, memberResponse{Rank: 1, ID: "user1", Name: "Alice", Messages: 2, Share: 2.0 / 3.0}, members.Data[0])

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/forwarded", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"forwarded_from":"News"`)
		assert.Contains(t, rr.Body.String(), `"text":"see this"`)

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/titles", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"title":"Cats"`)

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/messages/user1", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var thread domain.MemberThread
		decode(t, rr, &thread)
		assert.Equal(t, "Alice", thread.DisplayName)
		require.Len(t, thread.Messages, 2)
		assert.Equal(t, domain.EmptyTextPlaceholder, thread.Messages[1].Text.String())
	})

	t.Run("Без файла", func(t *testing.T) {
		srv := newTestServer(t)

		rr := do(srv, uploadRequest(t, "", "", ""))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var st stateResponse
		decode(t, rr, &st)
		assert.Equal(t, domain.StatusFailed, st.Status)
		assert.Equal(t, "no_file_selected", st.ErrorKind)
		assert.Equal(t, domain.MessageNoFileSelected, st.ErrorMessage)
		assert.Equal(t, domain.ViewUpload, st.View)
	})

	t.Run("Тело не multipart", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", strings.NewReader(chatJSON))
		req.Header.Set("Content-Type", "application/json")
		rr := do(srv, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "no_file_selected")
	})

	t.Run("Битый JSON заменяет загруженный документ", func(t *testing.T) {
		srv := newTestServer(t)
		require.Equal(t, http.StatusOK, do(srv, uploadRequest(t, "file", "result.json", chatJSON)).Code)

		rr := do(srv, uploadRequest(t, "file", "broken.json", "{not json"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var st stateResponse
		decode(t, rr, &st)
		assert.Equal(t, "parse_failure", st.ErrorKind)
		assert.Equal(t, "broken.json", st.Filename)
		assert.Equal(t, domain.MessageParseFailure, st.ErrorMessage)

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
		assert.Equal(t, http.StatusConflict, rr.Code)
		var resp map[string]string
		decode(t, rr, &resp)
		assert.Equal(t, "upload", resp["view"])
		assert.Equal(t, "/", resp["path"])
	})

	t.Run("Слишком большой файл не меняет состояние", func(t *testing.T) {
		srv := newTestServer(t)
		require.Equal(t, http.StatusOK, do(srv, uploadRequest(t, "file", "result.json", chatJSON)).Code)

		big := strings.Repeat("x", 2<<20)
		rr := do(srv, uploadRequest(t, "file", "big.json", big))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

		rr = do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
		var st stateResponse
		decode(t, rr, &st)
		assert.Equal(t, domain.StatusLoaded, st.Status)
	})
}

func TestAnalyticsErrors(t *testing.T) {
	endpoints := []string{
		"/api/v1/analytics",
		"/api/v1/analytics/members",
		"/api/v1/analytics/forwarded",
		"/api/v1/analytics/titles",
		"/api/v1/analytics/messages/user1",
	}

	t.Run("Без документа все разделы отправляют на загрузку", func(t *testing.T) {
		srv := newTestServer(t)
		for _, path := range endpoints {
			rr := do(srv, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusConflict, rr.Code, path)
			assert.Contains(t, rr.Body.String(), `"view":"upload"`, path)
		}
	})

	t.Run("Внутренняя ошибка", func(t *testing.T) {
		analyzer := new(mockAnalyzer)
		srv, err := New(testConfig(), analyzer, state.NewStore(), discardLogger())
		require.NoError(t, err)

		analyzer.On("Report", mock.Anything).Return(nil, errors.New("boom")).Once()

		rr := do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), domain.MessageGeneric)
		analyzer.AssertExpectations(t)
	})

	t.Run("Неверная пагинация", func(t *testing.T) {
		analyzer := new(mockAnalyzer)
		srv, err := New(testConfig(), analyzer, state.NewStore(), discardLogger())
		require.NoError(t, err)

		analyzer.On("Members", mock.Anything).Return([]domain.MemberActivity{}, 0, nil)

		for _, query := range []string{"page=0", "page=abc", "page_size=0", "page_size=1000"} {
			rr := do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/members?"+query, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code, query)
		}
	})

	t.Run("Страница за пределами списка пуста", func(t *testing.T) {
		analyzer := new(mockAnalyzer)
		srv, err := New(testConfig(), analyzer, state.NewStore(), discardLogger())
		require.NoError(t, err)

		analyzer.On("Members", mock.Anything).Return([]domain.MemberActivity{{Identity: "A", MessageCount: 1}}, 1, nil)

		rr := do(srv, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/members?page=5", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var resp membersResponse
		decode(t, rr, &resp)
		assert.Empty(t, resp.Data)
		assert.Equal(t, 1, resp.Pagination.TotalItems)
	})

	t.Run("Без анализатора сервер не создается", func(t *testing.T) {
		_, err := New(testConfig(), nil, nil, nil)
		assert.Error(t, err)
	})
}
