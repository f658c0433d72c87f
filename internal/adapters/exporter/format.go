package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// exportDateLayout — формат дат в файле экспорта Telegram.
const exportDateLayout = "2006-01-02T15:04:05"

// FormatNumber разделяет разряды запятыми: 1234567 -> "1,234,567".
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var sb strings.Builder
	head := len(s) % 3
	if head > 0 {
		sb.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sign + sb.String()
}

// FormatDate печатает дату экспорта как "Mon Jan 02 2006". Нераспознанная дата возвращается как есть.
func FormatDate(raw string) string {
	t, err := time.Parse(exportDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format("Mon Jan 02 2006")
}

// FormatShare печатает долю в процентах с одним знаком после запятой.
func FormatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// TitleChangeLine описывает одну смену названия группы.
func TitleChangeLine(actor, title, date string) string {
	return fmt.Sprintf("%s changed it to %s on %s", actor, title, FormatDate(date))
}
