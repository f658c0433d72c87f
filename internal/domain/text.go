package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SegmentTypePlain помечает простые строки внутри "богатого" текста.
const SegmentTypePlain = "plain"

// TextSegment — одна часть текста сообщения.
type TextSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// Text — текст сообщения. В файле экспорта это либо строка,
// либо массив из строк и объектов вида {"type": ..., "text": ...}.
type Text struct {
	Segments []TextSegment
	rich     bool
}

// PlainText создает текст из обычной строки.
func PlainText(s string) Text {
	return Text{Segments: []TextSegment{{Type: SegmentTypePlain, Text: s}}}
}

// RichText создает "богатый" текст из набора сегментов.
func RichText(segments ...TextSegment) Text {
	return Text{Segments: segments, rich: true}
}

// IsRich сообщает, пришел ли текст в виде массива сегментов.
func (t Text) IsRich() bool {
	return t.rich
}

// String склеивает текстовое содержимое всех сегментов по порядку.
func (t Text) String() string {
	if len(t.Segments) == 1 {
		return t.Segments[0].Text
	}
	var sb strings.Builder
	for _, s := range t.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// IsEmpty сообщает, что в тексте нет ни одного символа.
func (t Text) IsEmpty() bool {
	for _, s := range t.Segments {
		if s.Text != "" {
			return false
		}
	}
	return true
}

// UnmarshalJSON принимает строку, массив сегментов или null.
// Значения других типов считаются пустым текстом.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Text{}
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = PlainText(s)
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		segments := make([]TextSegment, 0, len(parts))
		for _, part := range parts {
			if seg, ok := decodeSegment(part); ok {
				segments = append(segments, seg)
			}
		}
		*t = RichText(segments...)
	}
	return nil
}

// decodeSegment разбирает один элемент массива; числа, null и прочее пропускаются.
func decodeSegment(part json.RawMessage) (TextSegment, bool) {
	part = bytes.TrimSpace(part)
	if len(part) == 0 {
		return TextSegment{}, false
	}

	switch part[0] {
	case '"':
		var s string
		if err := json.Unmarshal(part, &s); err != nil {
			return TextSegment{}, false
		}
		return TextSegment{Type: SegmentTypePlain, Text: s}, true
	case '{':
		var seg TextSegment
		if err := json.Unmarshal(part, &seg); err != nil {
			return TextSegment{}, false
		}
		return seg, true
	default:
		return TextSegment{}, false
	}
}

// MarshalJSON всегда отдает склеенную строку.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// MarshalYAML реализует yaml.Marshaler.
func (t Text) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
