package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

const (
	nameColumnWidth  = 28
	countColumnWidth = 10
	shareColumnWidth = 7
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// ConsoleExporter печатает отчет таблицами для терминала.
// При styled == false вывод не содержит управляющих последовательностей.
type ConsoleExporter struct {
	styled bool
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter(styled bool) *ConsoleExporter {
	return &ConsoleExporter{styled: styled}
}

var _ ports.Exporter = (*ConsoleExporter)(nil)

func (e *ConsoleExporter) render(style lipgloss.Style, s string) string {
	if !e.styled {
		return s
	}
	return style.Render(s)
}

// Export печатает сводку: заголовок, счетчики, топ участников и историю названий.
func (e *ConsoleExporter) Export(w io.Writer, report *domain.Report) error {
	var sb strings.Builder

	sb.WriteString(e.render(badgeStyle, strings.ToUpper(report.TypeLabel)) + "\n")
	sb.WriteString(e.render(titleStyle, "Analysis results for "+report.Name) + "\n\n")

	fmt.Fprintf(&sb, "Total messages:   %s\n", FormatNumber(report.TotalMessages))
	fmt.Fprintf(&sb, "Total members:    %s\n", FormatNumber(report.TotalMembers))
	fmt.Fprintf(&sb, "Forwarded:        %s\n\n", FormatNumber(report.TotalForwarded))

	sb.WriteString(e.render(titleStyle, fmt.Sprintf("Top %d Chattiest Members", len(report.TopMembers))) + "\n")
	e.membersTable(&sb, report.TopMembers, report.TotalMessages)
	sb.WriteString("\n")

	e.titles(&sb, report.GroupNameHistory)

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteMembers печатает полный рейтинг участников.
func (e *ConsoleExporter) WriteMembers(w io.Writer, members []domain.MemberActivity, totalMessages int) error {
	var sb strings.Builder
	sb.WriteString(e.render(titleStyle, "All Members") + "\n")
	e.membersTable(&sb, members, totalMessages)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteTitles печатает историю названий группы.
func (e *ConsoleExporter) WriteTitles(w io.Writer, history []domain.TitleChange) error {
	var sb strings.Builder
	e.titles(&sb, history)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteForwarded печатает пересланные сообщения.
func (e *ConsoleExporter) WriteForwarded(w io.Writer, messages []domain.NormalMessage) error {
	var sb strings.Builder
	sb.WriteString(e.render(titleStyle, fmt.Sprintf("Forwarded messages (%s)", FormatNumber(len(messages)))) + "\n")
	if len(messages) == 0 {
		sb.WriteString("No forwarded messages.\n")
	}
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s %s: Forwarded from %s\n", e.render(dimStyle, FormatDate(m.Date)), m.Sender(), m.ForwardedFrom)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteThread печатает переписку одного участника.
func (e *ConsoleExporter) WriteThread(w io.Writer, thread domain.MemberThread) error {
	var sb strings.Builder
	sb.WriteString(e.render(titleStyle, "Messages from "+thread.DisplayName) + "\n")
	if len(thread.Messages) == 0 {
		sb.WriteString("No messages.\n")
	}
	for _, m := range thread.Messages {
		fmt.Fprintf(&sb, "%s\n", e.render(dimStyle, FormatDate(m.Date)))
		if m.IsForwarded() {
			fmt.Fprintf(&sb, "  %s\n", e.render(badgeStyle, "Forwarded from "+m.ForwardedFrom))
		}
		for _, line := range strings.Split(m.Text.String(), "\n") {
			fmt.Fprintf(&sb, "  %s\n", line)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *ConsoleExporter) membersTable(sb *strings.Builder, members []domain.MemberActivity, totalMessages int) {
	if len(members) == 0 {
		sb.WriteString("No members found.\n")
		return
	}

	header := fmt.Sprintf("%4s  %s  %s  %s", "#",
		runewidth.FillRight("Name", nameColumnWidth),
		runewidth.FillLeft("Messages", countColumnWidth),
		runewidth.FillLeft("Share", shareColumnWidth))
	sb.WriteString(e.render(headerStyle, header) + "\n")

	for i, m := range members {
		name := runewidth.Truncate(m.Identity, nameColumnWidth, "…")
		fmt.Fprintf(sb, "%4d  %s  %s  %s\n", i+1,
			runewidth.FillRight(name, nameColumnWidth),
			runewidth.FillLeft(FormatNumber(m.MessageCount), countColumnWidth),
			runewidth.FillLeft(FormatShare(m.Share(totalMessages)), shareColumnWidth))
	}
}

func (e *ConsoleExporter) titles(sb *strings.Builder, history []domain.TitleChange) {
	sb.WriteString(e.render(titleStyle, "Group Name History") + "\n")
	if len(history) == 0 {
		sb.WriteString("No title changes.\n")
		return
	}
	for _, h := range history {
		sb.WriteString(TitleChangeLine(h.Actor, h.Title, h.Date) + "\n")
	}
}

// Extension возвращает расширение файла.
func (e *ConsoleExporter) Extension() string {
	return "txt"
}
