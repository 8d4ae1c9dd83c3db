package session

import (
	"sync"

	"coursebot/internal/domain"
)

// MediaStash holds one pending broadcast attachment per chat
type MediaStash struct {
	media map[int64]domain.Media
	mu    sync.Mutex
}

// NewMediaStash creates an empty stash
func NewMediaStash() *MediaStash {
	return &MediaStash{media: make(map[int64]domain.Media)}
}

// Put stores media for the chat, replacing any earlier attachment
func (s *MediaStash) Put(chatID int64, m domain.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[chatID] = m
}

// Take returns and clears the chat's pending media
func (s *MediaStash) Take(chatID int64) *domain.Media {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[chatID]
	if !ok {
		return nil
	}
	delete(s.media, chatID)
	return &m
}

// Peek reports whether the chat has pending media
func (s *MediaStash) Peek(chatID int64) (domain.Media, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[chatID]
	return m, ok
}
