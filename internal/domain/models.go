package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Значения поля "type" в записях экспорта.
const (
	EntryTypeMessage = "message"
	EntryTypeService = "service"
)

// Значения поля "action" служебных сообщений, которые мы различаем.
const (
	ActionCreateGroup       = "create_group"
	ActionEditGroupTitle    = "edit_group_title"
	ActionInviteMembers     = "invite_members"
	ActionRemoveMembers     = "remove_members"
	ActionInviteToGroupCall = "invite_to_group_call"
	ActionMigrateFromGroup  = "migrate_from_group"
)

// UnknownIdentity используется, когда у участника нет ни имени, ни идентификатора.
const UnknownIdentity = "Unknown"

// ExportedChat представляет корневую структуру файла экспорта.
// События хранятся в порядке файла и никогда не переупорядочиваются.
type ExportedChat struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Events []ChatEvent `json:"-"`
}

// rawExport повторяет форму файла экспорта "как есть".
// Поля неожиданного типа не ломают разбор, а считаются пустыми.
type rawExport struct {
	Name     looseString     `json:"name"`
	Type     looseString     `json:"type"`
	ID       looseInt        `json:"id"`
	Messages json.RawMessage `json:"messages"`
}

// UnmarshalJSON разбирает файл экспорта и превращает каждую запись в ChatEvent.
func (c *ExportedChat) UnmarshalJSON(data []byte) error {
	var raw rawExport
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var messages []Message
	if list := bytes.TrimSpace(raw.Messages); len(list) > 0 && list[0] == '[' {
		if err := json.Unmarshal(list, &messages); err != nil {
			return err
		}
	}

	c.ID = int(raw.ID)
	c.Name = string(raw.Name)
	c.Type = string(raw.Type)
	c.Events = make([]ChatEvent, 0, len(messages))
	for _, msg := range messages {
		c.Events = append(c.Events, msg.Event())
	}
	return nil
}

// Message представляет одну запись в чате в том виде, в каком она лежит в файле.
// Любое поле может отсутствовать, тогда оно остается пустым.
type Message struct {
	ID            int
	Type          string
	Date          string
	From          string
	FromID        string
	Actor         string
	ActorID       string
	Action        string
	Title         string
	Members       []string
	ForwardedFrom string
	Text          Text // Может быть строкой или массивом
}

type rawMessage struct {
	ID            looseInt     `json:"id"`
	Type          looseString  `json:"type"`
	Date          looseString  `json:"date"`
	From          looseString  `json:"from"`
	FromID        looseString  `json:"from_id"`
	Actor         looseString  `json:"actor"`
	ActorID       looseString  `json:"actor_id"`
	Action        looseString  `json:"action"`
	Title         looseString  `json:"title"`
	Members       looseStrings `json:"members"`
	ForwardedFrom looseString  `json:"forwarded_from"`
	Text          Text         `json:"text"`
}

// UnmarshalJSON читает поля записи по одному. Запись, которая не является
// объектом, превращается в пустое сообщение и дальше становится UnknownEvent.
func (m *Message) UnmarshalJSON(data []byte) error {
	*m = Message{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{
		ID:            int(raw.ID),
		Type:          string(raw.Type),
		Date:          string(raw.Date),
		From:          string(raw.From),
		FromID:        string(raw.FromID),
		Actor:         string(raw.Actor),
		ActorID:       string(raw.ActorID),
		Action:        string(raw.Action),
		Title:         string(raw.Title),
		Members:       raw.Members,
		ForwardedFrom: string(raw.ForwardedFrom),
		Text:          raw.Text,
	}
	return nil
}

// Event превращает запись файла в вариант ChatEvent.
// Неизвестные типы и действия не теряются, а попадают в UnknownEvent и UnknownService.
func (m Message) Event() ChatEvent {
	switch m.Type {
	case EntryTypeMessage:
		return NormalMessage{
			ID:            m.ID,
			Date:          m.Date,
			Text:          m.Text,
			SenderName:    m.From,
			SenderID:      m.FromID,
			ForwardedFrom: m.ForwardedFrom,
		}
	case EntryTypeService:
		return m.serviceEvent()
	default:
		return UnknownEvent{ID: m.ID, Type: m.Type, Date: m.Date}
	}
}

func (m Message) serviceEvent() ChatEvent {
	header := ServiceHeader{
		ID:        m.ID,
		Date:      m.Date,
		ActorName: m.Actor,
		ActorID:   m.ActorID,
	}

	switch m.Action {
	case ActionCreateGroup:
		return CreateGroup{ServiceHeader: header, Title: m.Title, Members: memberSet(m.Members)}
	case ActionInviteMembers:
		return InviteMembers{ServiceHeader: header, Members: memberSet(m.Members)}
	case ActionRemoveMembers:
		return RemoveMembers{ServiceHeader: header, Members: memberSet(m.Members)}
	case ActionInviteToGroupCall:
		return InviteToGroupCall{ServiceHeader: header, Members: memberSet(m.Members)}
	case ActionEditGroupTitle:
		return EditGroupTitle{ServiceHeader: header, Title: m.Title}
	case ActionMigrateFromGroup:
		return MigrateFromGroup{ID: m.ID, Date: m.Date, ActorID: m.ActorID, Title: m.Title}
	default:
		return UnknownService{ServiceHeader: header, Action: m.Action}
	}
}

// memberSet убирает пустые имена (null в файле) и повторы, сохраняя порядок.
func memberSet(members []string) []string {
	if len(members) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(members))
	set := make([]string, 0, len(members))
	for _, m := range members {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		set = append(set, m)
	}
	return set
}

// EventKind — дискриминатор верхнего уровня.
type EventKind string

const (
	KindMessage EventKind = "message"
	KindService EventKind = "service"
	KindUnknown EventKind = "unknown"
)

// ChatEvent — закрытое множество вариантов записи чата.
// Реализации существуют только в этом пакете.
type ChatEvent interface {
	Kind() EventKind
	EventDate() string
	isChatEvent()
}

// NormalMessage — обычное сообщение участника.
type NormalMessage struct {
	ID            int    `json:"id"`
	Date          string `json:"date"`
	Text          Text   `json:"text"`
	SenderName    string `json:"from,omitempty"`
	SenderID      string `json:"from_id,omitempty"`
	ForwardedFrom string `json:"forwarded_from,omitempty"`
}

func (NormalMessage) Kind() EventKind     { return KindMessage }
func (m NormalMessage) EventDate() string { return m.Date }
func (NormalMessage) isChatEvent()        {}

// Sender возвращает отображаемое имя отправителя: имя, затем ID, затем "Unknown".
func (m NormalMessage) Sender() string {
	switch {
	case m.SenderName != "":
		return m.SenderName
	case m.SenderID != "":
		return m.SenderID
	default:
		return UnknownIdentity
	}
}

// SenderKey возвращает ключ для агрегации по участнику: ID, затем имя, затем "Unknown".
func (m NormalMessage) SenderKey() string {
	switch {
	case m.SenderID != "":
		return m.SenderID
	case m.SenderName != "":
		return m.SenderName
	default:
		return UnknownIdentity
	}
}

// IsForwarded сообщает, было ли сообщение переслано.
func (m NormalMessage) IsForwarded() bool {
	return m.ForwardedFrom != ""
}

// ServiceHeader содержит общие поля служебных сообщений.
type ServiceHeader struct {
	ID        int    `json:"id"`
	Date      string `json:"date"`
	ActorName string `json:"actor,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
}

func (ServiceHeader) Kind() EventKind     { return KindService }
func (h ServiceHeader) EventDate() string { return h.Date }
func (ServiceHeader) isChatEvent()        {}

// Actor возвращает имя инициатора, а если его нет — его ID.
func (h ServiceHeader) Actor() string {
	if h.ActorName != "" {
		return h.ActorName
	}
	return h.ActorID
}

// CreateGroup — создание группы.
type CreateGroup struct {
	ServiceHeader
	Title   string   `json:"title"`
	Members []string `json:"members"`
}

// InviteMembers — приглашение участников.
type InviteMembers struct {
	ServiceHeader
	Members []string `json:"members"`
}

// RemoveMembers — исключение участников.
type RemoveMembers struct {
	ServiceHeader
	Members []string `json:"members"`
}

// InviteToGroupCall — приглашение в групповой звонок.
type InviteToGroupCall struct {
	ServiceHeader
	Members []string `json:"members"`
}

// EditGroupTitle — смена названия группы.
type EditGroupTitle struct {
	ServiceHeader
	Title string `json:"title"`
}

// MigrateFromGroup — перенос из обычной группы в супергруппу.
// Имя инициатора в этой записи не используется.
type MigrateFromGroup struct {
	ID      int    `json:"id"`
	Date    string `json:"date"`
	ActorID string `json:"actor_id,omitempty"`
	Title   string `json:"title"`
}

func (MigrateFromGroup) Kind() EventKind     { return KindService }
func (m MigrateFromGroup) EventDate() string { return m.Date }
func (MigrateFromGroup) isChatEvent()        {}

// UnknownService — служебное сообщение с действием, которое мы не разбираем
// (pin_message, edit_group_photo и т.д.).
type UnknownService struct {
	ServiceHeader
	Action string `json:"action"`
}

// UnknownEvent — запись с неизвестным значением "type".
type UnknownEvent struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Date string `json:"date"`
}

func (UnknownEvent) Kind() EventKind     { return KindUnknown }
func (e UnknownEvent) EventDate() string { return e.Date }
func (UnknownEvent) isChatEvent()        {}

// String нужен для отладочного вывода в логах.
func (e UnknownEvent) String() string {
	return fmt.Sprintf("unknown event %d (type=%q)", e.ID, e.Type)
}
