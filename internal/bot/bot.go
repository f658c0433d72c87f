package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-chat-analytics/internal/adapters/exporter"
	"telegram-chat-analytics/internal/adapters/source"
	"telegram-chat-analytics/internal/core/usecase"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/config"
	"telegram-chat-analytics/internal/ports"
	"telegram-chat-analytics/internal/state"
)

const (
	startCommand     = "start"
	statsCommand     = "stats"
	membersCommand   = "members"
	forwardedCommand = "forwarded"
	titlesCommand    = "titles"
	messagesCommand  = "messages"
	exportCommand    = "export"

	// maxMessageLength — ограничение Telegram на длину одного сообщения.
	maxMessageLength = 4096

	uploadPrompt = "Пожалуйста, отправьте мне JSON-файл с историей чата, выгруженный из Telegram."
)

// ChatAnalyzer определяет интерфейс варианта использования, который загружает и анализирует чат.
type ChatAnalyzer interface {
	Load(store *state.Store, filename string, src ports.DataSource) domain.LoadState
	Report(store *state.Store) (*domain.Report, error)
	Forwarded(store *state.Store) ([]domain.NormalMessage, error)
	Titles(store *state.Store) ([]domain.TitleChange, error)
	Thread(store *state.Store, memberID string) (domain.MemberThread, error)
}

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          config.Bot
	maxFileBytes int64
	analyzer     ChatAnalyzer
	sessions     *SessionStore
	logger       *slog.Logger
	httpClient   *http.Client

	// Точки подмены для тестов.
	sendMessageFunc      func(msg tgbotapi.Chattable) (tgbotapi.Message, error)
	getFileDirectURLFunc func(fileID string) (string, error)
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg *config.Config, analyzer ChatAnalyzer, sessions *SessionStore, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	b := newBot(cfg, analyzer, sessions, logger)
	b.api = api
	b.sendMessageFunc = api.Send
	b.getFileDirectURLFunc = api.GetFileDirectURL
	return b, nil
}

func newBot(cfg *config.Config, analyzer ChatAnalyzer, sessions *SessionStore, logger *slog.Logger) *Bot {
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return &Bot{
		cfg:          cfg.Bot,
		maxFileBytes: cfg.MaxUploadBytes(),
		analyzer:     analyzer,
		sessions:     sessions,
		logger:       logger.With(slog.String("component", "bot")),
		httpClient:   &http.Client{Timeout: cfg.Bot.HTTPTimeout},
	}
}

// Start запускает основной цикл обработки обновлений от Telegram.
// Возвращается после отмены контекста.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	// Сообщение без файла считается попыткой загрузки без выбранного файла.
	st := b.analyzer.Load(b.sessions.Get(msg.Chat.ID), "", nil)
	b.replyLoadState(msg.Chat.ID, st)
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	store := b.sessions.Get(chatID)

	var err error
	switch msg.Command() {
	case startCommand:
		replyText := "Добро пожаловать! Я бот для анализа истории чатов Telegram.\n\n" +
			"Отправьте мне JSON-файл экспорта (result.json), и я покажу статистику по участникам.\n\n" +
			"Команды после загрузки:\n" +
			"/stats сводка по чату\n" +
			"/members рейтинг участников\n" +
			"/forwarded пересланные сообщения\n" +
			"/titles история названий\n" +
			"/messages <user_id> сообщения участника\n" +
			"/export отчет в Excel\n\n" +
			"Новый файл заменяет предыдущий. Файлы не сохраняются и обрабатываются на лету."
		b.sendText(chatID, replyText)
		return
	case statsCommand:
		err = b.sendOverview(chatID, store)
	case membersCommand:
		err = b.sendMembers(chatID, store)
	case forwardedCommand:
		err = b.sendForwarded(chatID, store)
	case titlesCommand:
		err = b.sendTitles(chatID, store)
	case messagesCommand:
		memberID := strings.TrimSpace(msg.CommandArguments())
		if memberID == "" {
			b.sendText(chatID, "Использование: /messages <user_id>, например /messages user123456")
			return
		}
		err = b.sendThread(chatID, store, memberID)
	case exportCommand:
		err = b.sendExport(chatID, store)
	default:
		b.sendText(chatID, "Я не знаю такой команды.")
		return
	}

	if err != nil {
		b.replyError(chatID, err)
	}
}

// handleDocument скачивает документ и загружает его в состояние чата.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("file_name", msg.Document.FileName))

	fileURL, err := b.getFileDirectURLFunc(msg.Document.FileID)
	if err != nil {
		logger.Error("failed to get file direct url", slog.String("error", err.Error()))
		b.sendText(chatID, domain.MessageGeneric)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.HTTPTimeout)
	defer cancel()

	src := source.NewHTTPSource(ctx, b.httpClient, fileURL, b.maxFileBytes)
	st := b.analyzer.Load(b.sessions.Get(chatID), msg.Document.FileName, src)
	logger.Info("document processed", slog.String("status", string(st.Status())))

	b.replyLoadState(chatID, st)
}

// replyLoadState отвечает на результат загрузки: сводкой или текстом ошибки.
func (b *Bot) replyLoadState(chatID int64, st domain.LoadState) {
	switch s := st.(type) {
	case domain.Loaded:
		if err := b.sendOverview(chatID, b.sessions.Get(chatID)); err != nil {
			b.replyError(chatID, err)
		}
	case domain.Failed:
		b.sendText(chatID, domain.UserMessage(s.Err))
	default:
		b.sendText(chatID, uploadPrompt)
	}
}

// replyError переводит ошибку аналитики в ответ пользователю.
func (b *Bot) replyError(chatID int64, err error) {
	if errors.Is(err, usecase.ErrNotLoaded) {
		b.sendText(chatID, uploadPrompt)
		return
	}
	b.logger.Error("analytics failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	b.sendText(chatID, domain.MessageGeneric)
}

func (b *Bot) sendOverview(chatID int64, store *state.Store) error {
	report, err := b.analyzer.Report(store)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b> (%s)\n", html.EscapeString(report.Name), html.EscapeString(report.TypeLabel)))
	sb.WriteString(fmt.Sprintf("Сообщений: %s\n", exporter.FormatNumber(report.TotalMessages)))
	sb.WriteString(fmt.Sprintf("Участников: %s\n", exporter.FormatNumber(report.TotalMembers)))
	sb.WriteString(fmt.Sprintf("Пересланных: %s\n", exporter.FormatNumber(report.TotalForwarded)))

	if len(report.TopMembers) > 0 {
		sb.WriteString("\nСамые активные участники:\n<pre><code>")
		sb.WriteString(renderMembersTable(report.TopMembers, report.TotalMessages, b.cfg.Render, true))
		sb.WriteString("</code></pre>")
	}
	sb.WriteString("\nПодробнее: /members /forwarded /titles /export")

	b.sendHTML(chatID, sb.String(), func() {
		b.sendPlainAsFile(chatID, "chat_overview", renderMembersTable(report.TopMembers, report.TotalMessages, b.cfg.Render, false),
			"Сводка слишком большая для одного сообщения, поэтому она прикреплена в виде файла.")
	})
	return nil
}

// sendMembers отправляет рейтинг участников: таблицей или Excel-файлом, если участников много.
func (b *Bot) sendMembers(chatID int64, store *state.Store) error {
	report, err := b.analyzer.Report(store)
	if err != nil {
		return err
	}

	if len(report.Members) == 0 {
		b.sendText(chatID, "Не удалось найти участников с сообщениями в предоставленном файле.")
		return nil
	}

	if len(report.Members) >= b.cfg.ExcelThreshold {
		b.logger.Info("member count is over threshold, sending excel file", slog.Int("members", len(report.Members)))
		b.sendText(chatID, fmt.Sprintf("Найдено %d участников. Формирую Excel-файл...", len(report.Members)))
		b.sendExcelReport(chatID, report)
		return nil
	}

	table := renderMembersTable(report.Members, report.TotalMessages, b.cfg.Render, true)
	text := fmt.Sprintf("Найдено %d участников:\n<pre><code>%s</code></pre>", len(report.Members), table)
	b.sendHTML(chatID, text, func() {
		b.sendPlainAsFile(chatID, "chat_members", renderMembersTable(report.Members, report.TotalMessages, b.cfg.Render, false),
			fmt.Sprintf("Найдено %d участников. Список слишком большой для одного сообщения, поэтому он прикреплен в виде файла.", len(report.Members)))
	})
	return nil
}

func (b *Bot) sendForwarded(chatID int64, store *state.Store) error {
	messages, err := b.analyzer.Forwarded(store)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := exporter.NewConsoleExporter(false).WriteForwarded(&buf, messages); err != nil {
		return fmt.Errorf("failed to render forwarded messages: %w", err)
	}
	b.sendPreformatted(chatID, fmt.Sprintf("Пересланных сообщений: %d", len(messages)), "chat_forwarded", buf.String())
	return nil
}

func (b *Bot) sendTitles(chatID int64, store *state.Store) error {
	history, err := b.analyzer.Titles(store)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := exporter.NewConsoleExporter(false).WriteTitles(&buf, history); err != nil {
		return fmt.Errorf("failed to render title history: %w", err)
	}
	b.sendPreformatted(chatID, "История названий группы", "chat_titles", buf.String())
	return nil
}

func (b *Bot) sendThread(chatID int64, store *state.Store, memberID string) error {
	thread, err := b.analyzer.Thread(store, memberID)
	if err != nil {
		return err
	}
	if len(thread.Messages) == 0 {
		b.sendText(chatID, fmt.Sprintf("У участника %s нет сообщений в этом чате.", memberID))
		return nil
	}

	var buf bytes.Buffer
	if err := exporter.NewConsoleExporter(false).WriteThread(&buf, thread); err != nil {
		return fmt.Errorf("failed to render messages: %w", err)
	}
	b.sendPreformatted(chatID, fmt.Sprintf("Сообщений: %d", len(thread.Messages)), "chat_messages_"+memberID, buf.String())
	return nil
}

func (b *Bot) sendExport(chatID int64, store *state.Store) error {
	report, err := b.analyzer.Report(store)
	if err != nil {
		return err
	}
	b.sendExcelReport(chatID, report)
	return nil
}

func (b *Bot) sendExcelReport(chatID int64, report *domain.Report) {
	excel := exporter.NewExcelExporter()

	var buf bytes.Buffer
	if err := excel.Export(&buf, report); err != nil {
		b.logger.Error("failed to write excel to buffer", slog.String("error", err.Error()))
		b.sendText(chatID, "Не удалось сгенерировать Excel-файл.")
		return
	}

	fileName := fmt.Sprintf("chat_report_%s.%s", time.Now().Format("2006-01-02_15-04-05"), excel.Extension())
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: buf.Bytes()})
	msg.Caption = fmt.Sprintf("Анализ завершен. Участников: %d, сообщений: %d.", report.TotalMembers, report.TotalMessages)
	b.sendMessage(msg)
}

// sendPreformatted отправляет заголовок и моноширинный блок, а длинный текст прикладывает файлом.
func (b *Bot) sendPreformatted(chatID int64, title, fileBase, body string) {
	text := fmt.Sprintf("%s\n<pre>%s</pre>", html.EscapeString(title), html.EscapeString(body))
	b.sendHTML(chatID, text, func() {
		b.sendPlainAsFile(chatID, fileBase, body, title+". Текст слишком большой для одного сообщения, поэтому он прикреплен в виде файла.")
	})
}

// sendHTML отправляет HTML-сообщение или вызывает fallback, если оно длиннее лимита Telegram.
func (b *Bot) sendHTML(chatID int64, text string, fallback func()) {
	if len(text) > maxMessageLength {
		b.logger.Warn("сгенерированный текст слишком длинный, отправка в виде файла", "length", len(text))
		fallback()
		return
	}

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(reply)
}

func (b *Bot) sendPlainAsFile(chatID int64, fileBase, body, caption string) {
	fileName := fmt.Sprintf("%s_%s.txt", fileBase, time.Now().Format("2006-01-02_15-04-05"))
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: []byte(body)})
	msg.Caption = caption
	b.sendMessage(msg)
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}
