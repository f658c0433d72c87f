package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"telegram-chat-analytics/internal/adapters/exporter"
	"telegram-chat-analytics/internal/adapters/parser"
	"telegram-chat-analytics/internal/adapters/source"
	"telegram-chat-analytics/internal/cache"
	"telegram-chat-analytics/internal/core/services"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/state"
)

// testData покрывает все виды событий экспорта.
const testData = `{
	"name": "Test Chat",
	"type": "private_supergroup",
	"id": 123456789,
	"messages": [
		{"id": 1, "type": "service", "date": "2023-01-01T00:00:00", "actor": "Owner", "actor_id": "user1", "action": "create_group", "title": "First", "members": ["Guest"]},
		{"id": 2, "type": "message", "date": "2023-01-01T00:01:00", "from": "Owner", "from_id": "user1", "text": "Hello, world!"},
		{"id": 3, "type": "message", "date": "2023-01-01T00:02:00", "from": "Guest", "from_id": "user2", "text": ["see ", {"type": "link", "text": "here"}]},
		{"id": 4, "type": "message", "date": "2023-01-01T00:03:00", "from": "Owner", "from_id": "user1", "text": "", "forwarded_from": "Channel"},
		{"id": 5, "type": "service", "date": "2023-01-02T00:00:00", "actor": "Owner", "actor_id": "user1", "action": "invite_members", "members": ["Late"]},
		{"id": 6, "type": "message", "date": "2023-01-02T00:01:00", "from": "Late", "from_id": "user3", "text": "hi all"},
		{"id": 7, "type": "service", "date": "2023-01-03T00:00:00", "actor": "Owner", "actor_id": "user1", "action": "remove_members", "members": ["Late"]},
		{"id": 8, "type": "service", "date": "2023-01-04T00:00:00", "actor": "Guest", "actor_id": "user2", "action": "edit_group_title", "title": "Second"},
		{"id": 9, "type": "service", "date": "2023-01-05T00:00:00", "actor": "Owner", "actor_id": "user1", "action": "pin_message"},
		{"id": 10, "type": "service", "date": "2023-01-06T00:00:00", "actor": "Owner", "actor_id": "user1", "action": "invite_to_group_call", "members": ["Guest"]},
		{"id": 11, "type": "service", "date": "2023-01-07T00:00:00", "actor_id": "channel5", "action": "migrate_from_group", "title": "Third"}
	]
}`

func newAnalyzer() *usecase.AnalyzeChatUseCase {
	cfg := &config.Config{Analytics: config.Analytics{TopMembers: 10, CacheTTL: config.DefaultCacheTTL}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usecase.NewAnalyzeChatUseCase(cfg,
		services.NewLoader(parser.NewJsonParser(), logger),
		services.NewAnalyticsService(services.WithTopMembers(cfg.Analytics.TopMembers)),
		cache.NewReportCache(),
		logger,
	)
}

// Этот интеграционный тест проходит весь путь: источник, загрузчик, аналитика, экспорт.
func TestFullApplicationFlow(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "result.json")
	require.NoError(t, os.WriteFile(testFile, []byte(testData), 0o644))

	analyzer := newAnalyzer()
	store := state.NewStore()

	// 1. Загрузка
	st := analyzer.Load(store, "result.json", source.NewCliSource(testFile))
	loaded, ok := st.(domain.Loaded)
	require.True(t, ok, "ожидалось состояние Loaded, получено %T", st)
	assert.Equal(t, domain.ViewResults, store.View())
	assert.Len(t, loaded.Chat.Events, 11)
	assert.NotEmpty(t, loaded.Digest)
	assert.NotEmpty(t, loaded.AttemptID)

	// 2. Аналитика
	report, err := analyzer.Report(store)
	require.NoError(t, err)
	assert.Equal(t, "private supergroup", report.TypeLabel)
	assert.Equal(t, 4, report.TotalMessages)
	assert.Equal(t, 1, report.TotalForwarded)
	// Late исключен из группы и не попадает в рейтинг.
	assert.Equal(t, []domain.MemberActivity{
		{ID: "user1", Identity: "Owner", MessageCount: 2},
		{ID: "user2", Identity: "Guest", MessageCount: 1},
	}, report.Members)
	assert.Equal(t, []domain.TitleChange{
		{Actor: "Owner", Date: "2023-01-01T00:00:00", Title: "First"},
		{Actor: "Guest", Date: "2023-01-04T00:00:00", Title: "Second"},
		{Actor: "channel5", Date: "2023-01-07T00:00:00", Title: "Third"},
	}, report.GroupNameHistory)

	thread, err := analyzer.Thread(store, "user1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, domain.EmptyTextPlaceholder, thread.Messages[1].Text.String())

	// Повторный запрос отдает тот же отчет из кеша.
	again, err := analyzer.Report(store)
	require.NoError(t, err)
	assert.Same(t, report, again)

	// 3. Экспорт во все форматы
	t.Run("JSON", func(t *testing.T) {
		exp, err := exporter.NewExporter("json")
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, exp.Export(&buf, report))

		var decoded domain.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, report.Members, decoded.Members)
	})

	t.Run("YAML", func(t *testing.T) {
		exp, err := exporter.NewExporter("yaml")
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, exp.Export(&buf, report))

		var decoded map[string]interface{}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "Test Chat", decoded["name"])
		assert.Equal(t, 4, decoded["total_messages"])
	})

	t.Run("Excel", func(t *testing.T) {
		exp, err := exporter.NewExporter("xlsx")
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, exp.Export(&buf, report))
		assert.NotZero(t, buf.Len())
	})

	t.Run("Текст", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exporter.NewConsoleExporter(false).Export(&buf, report))
		assert.Contains(t, buf.String(), "Guest changed it to Second on Wed Jan 04 2023")
	})
}

func TestFailedLoadReplacesDocument(t *testing.T) {
	analyzer := newAnalyzer()
	store := state.NewStore()

	st := analyzer.Load(store, "result.json", source.NewMemorySource([]byte(testData)))
	require.Equal(t, domain.StatusLoaded, st.Status())

	st = analyzer.Load(store, "broken.json", source.NewMemorySource([]byte(`{"messages": [`)))
	failed, ok := st.(domain.Failed)
	require.True(t, ok)
	assert.Equal(t, domain.MessageParseFailure, domain.UserMessage(failed.Err))
	assert.Equal(t, domain.ViewUpload, store.View())

	_, err := analyzer.Report(store)
	assert.ErrorIs(t, err, usecase.ErrNotLoaded)

	st = analyzer.Load(store, "", nil)
	failed, ok = st.(domain.Failed)
	require.True(t, ok)
	assert.Equal(t, domain.NoFileSelected{}, failed.Err)
}

func TestNumericFieldsStillLoad(t *testing.T) {
	analyzer := newAnalyzer()
	store := state.NewStore()

	data := `{
		"name": 2023,
		"type": "private_group",
		"id": "42",
		"messages": [
			{"id": 1, "type": "service", "date": "2023-01-01T00:00:00", "actor": "Owner", "actor_id": 12345, "action": "edit_group_title", "title": 777},
			{"id": 2, "type": "message", "date": "2023-01-01T00:01:00", "from": "Owner", "from_id": 12345, "text": "hi"},
			{"id": 3, "type": "message", "date": "2023-01-01T00:02:00", "from": "Owner", "from_id": 12345, "text": "again"},
			{"id": 4, "type": "message", "date": "2023-01-01T00:03:00", "from": {"first": "x"}, "from_id": true, "text": "odd"}
		]
	}`

	st := analyzer.Load(store, "result.json", source.NewMemorySource([]byte(data)))
	loaded, ok := st.(domain.Loaded)
	require.True(t, ok, "ожидалось состояние Loaded, получено %T", st)
	assert.Equal(t, 42, loaded.Chat.ID)
	assert.Equal(t, "2023", loaded.Chat.Name)

	report, err := analyzer.Report(store)
	require.NoError(t, err)
	assert.Equal(t, []domain.MemberActivity{
		{ID: "12345", Identity: "Owner", MessageCount: 2},
		{Identity: domain.UnknownIdentity, MessageCount: 1},
	}, report.Members)
	assert.Equal(t, []domain.TitleChange{
		{Actor: "Owner", Date: "2023-01-01T00:00:00", Title: "777"},
	}, report.GroupNameHistory)

	thread, err := analyzer.Thread(store, "12345")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 2)
}
