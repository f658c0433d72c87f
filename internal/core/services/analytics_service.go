package services

import (
	"slices"

	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

// DefaultTopMembers — сколько самых активных участников попадает в сводку.
const DefaultTopMembers = 10

// AnalyticsServiceImpl реализует интерфейс AnalyticsService.
// Все методы только читают документ и безопасны для параллельного вызова.
type AnalyticsServiceImpl struct {
	topMembers int
}

// Option настраивает AnalyticsServiceImpl.
type Option func(*AnalyticsServiceImpl)

// WithTopMembers задает размер списка самых активных участников в отчете.
func WithTopMembers(n int) Option {
	return func(s *AnalyticsServiceImpl) {
		if n > 0 {
			s.topMembers = n
		}
	}
}

// NewAnalyticsService создает новый экземпляр AnalyticsServiceImpl.
func NewAnalyticsService(opts ...Option) ports.AnalyticsService {
	s := &AnalyticsServiceImpl{topMembers: DefaultTopMembers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CountMessages считает обычные сообщения. Служебные и неизвестные записи не учитываются.
func (s *AnalyticsServiceImpl) CountMessages(chat *domain.ExportedChat) int {
	if chat == nil {
		return 0
	}
	count := 0
	for _, ev := range chat.Events {
		if _, ok := ev.(domain.NormalMessage); ok {
			count++
		}
	}
	return count
}

// MembersWithMessages строит рейтинг отправителей по числу сообщений.
// Участник, упомянутый хотя бы в одном remove_members, в рейтинг не попадает,
// сколько бы сообщений он ни отправил. Равные счетчики сохраняют порядок первого появления.
// Сообщения без ID засчитываются участнику с тем же именем, если такой участник с ID ровно один.
func (s *AnalyticsServiceImpl) MembersWithMessages(chat *domain.ExportedChat) []domain.MemberActivity {
	if chat == nil {
		return []domain.MemberActivity{}
	}

	index := make(map[string]int)
	var members []domain.MemberActivity
	removed := make(map[string]struct{})

	for _, ev := range chat.Events {
		switch e := ev.(type) {
		case domain.NormalMessage:
			key := e.SenderKey()
			i, ok := index[key]
			if !ok {
				index[key] = len(members)
				members = append(members, domain.MemberActivity{ID: e.SenderID, Identity: e.Sender()})
				i = len(members) - 1
			}
			members[i].MessageCount++
			// Имя могло появиться в более поздних сообщениях.
			if members[i].Identity == members[i].ID && e.SenderName != "" {
				members[i].Identity = e.SenderName
			}
		case domain.RemoveMembers:
			for _, m := range e.Members {
				removed[m] = struct{}{}
			}
		case domain.CreateGroup, domain.InviteMembers, domain.InviteToGroupCall,
			domain.EditGroupTitle, domain.MigrateFromGroup, domain.UnknownService, domain.UnknownEvent:
			// на рейтинг не влияют
		}
	}

	result := make([]domain.MemberActivity, 0, len(members))
	for _, m := range mergeNameOnly(members) {
		if isRemoved(removed, m) {
			continue
		}
		result = append(result, m)
	}

	slices.SortStableFunc(result, func(a, b domain.MemberActivity) int {
		return b.MessageCount - a.MessageCount
	})
	return result
}

// mergeNameOnly переносит счетчики участников без ID в участника с ID и тем же именем.
// Итоговая запись занимает место первого появления любой из слитых записей.
func mergeNameOnly(members []domain.MemberActivity) []domain.MemberActivity {
	byName := make(map[string]int)
	for i, m := range members {
		if m.ID == "" {
			continue
		}
		if _, ok := byName[m.Identity]; ok {
			byName[m.Identity] = -1 // имя неоднозначно
			continue
		}
		byName[m.Identity] = i
	}

	merged := make([]domain.MemberActivity, 0, len(members))
	slot := make(map[int]int, len(members))
	for i, m := range members {
		target := i
		if j, ok := byName[m.Identity]; ok && m.ID == "" && j >= 0 {
			target = j
		}
		if pos, ok := slot[target]; ok {
			merged[pos].MessageCount += m.MessageCount
			continue
		}
		entry := members[target]
		entry.MessageCount = m.MessageCount
		slot[target] = len(merged)
		merged = append(merged, entry)
	}
	return merged
}

func isRemoved(removed map[string]struct{}, m domain.MemberActivity) bool {
	if _, ok := removed[m.Identity]; ok {
		return true
	}
	if m.ID == "" {
		return false
	}
	_, ok := removed[m.ID]
	return ok
}

// ForwardedMessages возвращает пересланные сообщения в исходном порядке.
func (s *AnalyticsServiceImpl) ForwardedMessages(chat *domain.ExportedChat) []domain.NormalMessage {
	forwarded := []domain.NormalMessage{}
	if chat == nil {
		return forwarded
	}
	for _, ev := range chat.Events {
		if msg, ok := ev.(domain.NormalMessage); ok && msg.IsForwarded() {
			forwarded = append(forwarded, msg)
		}
	}
	return forwarded
}

// GroupNameHistory собирает создание группы, смены названия и перенос в супергруппу.
func (s *AnalyticsServiceImpl) GroupNameHistory(chat *domain.ExportedChat) []domain.TitleChange {
	history := []domain.TitleChange{}
	if chat == nil {
		return history
	}
	for _, ev := range chat.Events {
		switch e := ev.(type) {
		case domain.CreateGroup:
			history = append(history, domain.TitleChange{Actor: e.Actor(), Date: e.Date, Title: e.Title})
		case domain.EditGroupTitle:
			history = append(history, domain.TitleChange{Actor: e.Actor(), Date: e.Date, Title: e.Title})
		case domain.MigrateFromGroup:
			history = append(history, domain.TitleChange{Actor: e.ActorID, Date: e.Date, Title: e.Title})
		}
	}
	return history
}

// MessagesFrom возвращает сообщения участника с нормализованным текстом:
// составной текст склеивается, пустой заменяется на EmptyTextPlaceholder.
func (s *AnalyticsServiceImpl) MessagesFrom(chat *domain.ExportedChat, memberID string) domain.MemberThread {
	thread := domain.MemberThread{
		MemberID:    memberID,
		DisplayName: domain.UnknownIdentity,
		Messages:    []domain.NormalMessage{},
	}
	if chat == nil || memberID == "" {
		return thread
	}

	for _, ev := range chat.Events {
		msg, ok := ev.(domain.NormalMessage)
		if !ok || msg.SenderID != memberID {
			continue
		}
		msg.Text = normalizeText(msg.Text)
		thread.Messages = append(thread.Messages, msg)
	}

	if len(thread.Messages) > 0 {
		thread.DisplayName = thread.Messages[0].Sender()
	}
	return thread
}

func normalizeText(t domain.Text) domain.Text {
	if t.IsEmpty() {
		return domain.PlainText(domain.EmptyTextPlaceholder)
	}
	return domain.PlainText(t.String())
}

// BuildReport собирает сводку для экрана результатов.
func (s *AnalyticsServiceImpl) BuildReport(chat *domain.ExportedChat) *domain.Report {
	if chat == nil {
		return &domain.Report{}
	}

	members := s.MembersWithMessages(chat)
	top := members
	if len(top) > s.topMembers {
		top = top[:s.topMembers]
	}

	return &domain.Report{
		ChatID:           chat.ID,
		Name:             chat.Name,
		Type:             chat.Type,
		TypeLabel:        domain.TypeLabel(chat.Type),
		TotalMessages:    s.CountMessages(chat),
		TotalMembers:     len(members),
		TotalForwarded:   len(s.ForwardedMessages(chat)),
		TopMembers:       top,
		Members:          members,
		GroupNameHistory: s.GroupNameHistory(chat),
	}
}
