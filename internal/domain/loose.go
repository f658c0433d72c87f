package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// looseString принимает строку или число (число сохраняется как есть, "12345").
// null, bool, объекты и массивы дают пустую строку.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = ""
	if len(data) == 0 {
		return nil
	}

	switch {
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case isNumberStart(data[0]):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = looseString(n.String())
	}
	return nil
}

// looseInt принимает целое число или строку с целым числом, все остальное дает 0.
type looseInt int

func (i *looseInt) UnmarshalJSON(data []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = 0
	if n, err := strconv.Atoi(string(s)); err == nil {
		*i = looseInt(n)
	}
	return nil
}

// looseStrings принимает массив; элементы разбираются как looseString.
// Любое другое значение дает пустой список.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = nil
	if len(data) == 0 || data[0] != '[' {
		return nil
	}

	var items []looseString
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	list := make([]string, len(items))
	for i, item := range items {
		list[i] = string(item)
	}
	*l = list
	return nil
}

func isNumberStart(c byte) bool {
	return c == '-' || (c >= '0' && c <= '9')
}
