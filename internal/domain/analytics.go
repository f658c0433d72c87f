package domain

import "strings"

// EmptyTextPlaceholder подставляется вместо пустого текста (обычно это вложение,
// не попавшее в экспорт).
const EmptyTextPlaceholder = "(File not included.)"

// MemberActivity — участник и количество его сообщений.
// Пересчитывается при каждом вызове и нигде не хранится.
type MemberActivity struct {
	ID           string `json:"id" yaml:"id"`
	Identity     string `json:"name" yaml:"name"`
	MessageCount int    `json:"messages" yaml:"messages"`
}

// Share возвращает долю сообщений участника от общего числа (0..1).
func (m MemberActivity) Share(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(m.MessageCount) / float64(total)
}

// TitleChange — одна запись истории названий группы.
type TitleChange struct {
	Actor string `json:"actor" yaml:"actor"`
	Date  string `json:"date" yaml:"date"`
	Title string `json:"title" yaml:"title"`
}

// MemberThread — все сообщения одного участника с нормализованным текстом.
type MemberThread struct {
	MemberID    string          `json:"member_id"`
	DisplayName string          `json:"name"`
	Messages    []NormalMessage `json:"messages"`
}

// Report — сводка по чату для экрана результатов.
type Report struct {
	ChatID           int              `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	Type             string           `json:"type" yaml:"type"`
	TypeLabel        string           `json:"type_label" yaml:"type_label"`
	TotalMessages    int              `json:"total_messages" yaml:"total_messages"`
	TotalMembers     int              `json:"total_members" yaml:"total_members"`
	TotalForwarded   int              `json:"total_forwarded" yaml:"total_forwarded"`
	TopMembers       []MemberActivity `json:"top_members" yaml:"top_members"`
	Members          []MemberActivity `json:"members" yaml:"members"`
	GroupNameHistory []TitleChange    `json:"group_name_history" yaml:"group_name_history"`
}

// TypeLabel превращает тип чата в подпись: "private_group" -> "private group".
// Заменяется только первое подчеркивание.
func TypeLabel(chatType string) string {
	return strings.Replace(chatType, "_", " ", 1)
}
