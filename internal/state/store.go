package state

import (
	"sync"

	"telegram-chat-analytics/internal/domain"
)

// Store — единственный слот состояния загрузки.
// Пишет в него только результат загрузчика, читают все представления.
type Store struct {
	current domain.LoadState
	mutex   sync.RWMutex
}

// NewStore создает хранилище в состоянии Empty.
func NewStore() *Store {
	return &Store{current: domain.Empty{}}
}

// Set заменяет текущее состояние. Последняя запись побеждает, старый документ отбрасывается.
func (s *Store) Set(st domain.LoadState) {
	if st == nil {
		st = domain.Empty{}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.current = st
}

// Get возвращает текущее состояние.
func (s *Store) Get() domain.LoadState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current
}

// Loaded возвращает загруженный документ, если он есть.
func (s *Store) Loaded() (domain.Loaded, bool) {
	loaded, ok := s.Get().(domain.Loaded)
	return loaded, ok
}

// View вычисляет экран для текущего состояния при каждом вызове.
func (s *Store) View() domain.View {
	return domain.ViewFor(s.Get())
}
