package bot

import (
	"sync"

	"telegram-chat-analytics/internal/state"
)

// SessionStore — потокобезопасное in-memory хранилище, которое сопоставляет
// идентификатор чата Telegram с состоянием загрузки этого чата.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*state.Store // map[chatID]store
}

// NewSessionStore создает новый экземпляр SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*state.Store),
	}
}

// Get возвращает состояние чата. Для нового чата создается пустое состояние.
func (s *SessionStore) Get(chatID int64) *state.Store {
	s.mu.RLock()
	store, ok := s.sessions[chatID]
	s.mu.RUnlock()
	if ok {
		return store
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok = s.sessions[chatID]; ok {
		return store
	}
	store = state.NewStore()
	s.sessions[chatID] = store
	return store
}
