package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"telegram-chat-analytics/internal/adapters/exporter"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/pkg/config"
)

// renderMembersTable рисует таблицу участников для блока <pre><code>.
// При escape == true имена экранируются для HTML.
func renderMembersTable(members []domain.MemberActivity, totalMessages int, widths config.ColumnWidths, escape bool) string {
	nameColWidth := widths.Name
	msgColWidth := widths.Messages
	shareColWidth := widths.Share

	var sb strings.Builder

	headerName := "Name"
	headerMessages := "Msgs"
	headerShare := "Share"
	sb.WriteString(fmt.Sprintf("| %s%s | %s%s | %s%s |\n",
		headerName, generatePadding(headerName, nameColWidth),
		headerMessages, generatePadding(headerMessages, msgColWidth),
		headerShare, generatePadding(headerShare, shareColWidth),
	))
	sb.WriteString(fmt.Sprintf("|%s|%s|%s|\n",
		strings.Repeat("-", nameColWidth+2),
		strings.Repeat("-", msgColWidth+2),
		strings.Repeat("-", shareColWidth+2),
	))

	for _, m := range members {
		name := strings.ReplaceAll(strings.ToValidUTF8(m.Identity, ""), "\n", " ")
		nameLines := wrapString(name, nameColWidth)
		count := exporter.FormatNumber(m.MessageCount)
		share := exporter.FormatShare(m.Share(totalMessages))

		for i, namePart := range nameLines {
			countPart, sharePart := "", ""
			if i == 0 {
				countPart, sharePart = count, share
			}
			// Отступ считается по исходной строке, экранирование меняет только байты.
			padName := generatePadding(namePart, nameColWidth)
			if escape {
				namePart = html.EscapeString(namePart)
			}
			sb.WriteString(fmt.Sprintf("| %s%s | %s%s | %s%s |\n",
				namePart, padName,
				generatePadding(countPart, msgColWidth), countPart,
				generatePadding(sharePart, shareColWidth), sharePart,
			))
		}
	}
	return sb.String()
}

// generatePadding вычисляет отступ для строки с учетом поправки на CJK-символы.
func generatePadding(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)

	// Если в строке есть CJK-символы, добавляем один пробел: часть клиентов
	// рисует их шире, чем считает runewidth.
	hasCJK := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			hasCJK = true
			break
		}
	}

	if hasCJK && paddingNeeded >= 0 {
		paddingNeeded++
	}

	if paddingNeeded > 0 {
		return strings.Repeat(" ", paddingNeeded)
	}
	return ""
}

// wrapString переносит строку по ширине, по возможности на границах слов.
// Слово длиннее ширины разрывается посередине.
func wrapString(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
			lines = append(lines, splitByWidth(word, width)...)
			continue
		}

		lineLen := runewidth.StringWidth(currentLine.String())
		if lineLen > 0 && lineLen+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return lines
}

func splitByWidth(word string, width int) []string {
	var lines []string
	runes := []rune(word)
	for len(runes) > 0 {
		i := 0
		currentWidth := 0
		for i < len(runes) {
			runeWidth := runewidth.RuneWidth(runes[i])
			if currentWidth+runeWidth > width {
				break
			}
			currentWidth += runeWidth
			i++
		}
		// Символ шире колонки все равно выводится, иначе цикл не завершится.
		if i == 0 {
			i = 1
		}
		lines = append(lines, string(runes[:i]))
		runes = runes[i:]
	}
	return lines
}
