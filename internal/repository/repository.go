package repository

import (
	"coursebot/internal/domain"
)

// UserRepository persists the user registry
type UserRepository interface {
	LoadUsers() ([]domain.UserProfile, error)
	SaveUser(user *domain.UserProfile) error
	SaveAll(users []domain.UserProfile) error
}

// BroadcastRepository persists broadcast history
type BroadcastRepository interface {
	// LoadBroadcasts returns every record and the last allocated broadcast ID
	LoadBroadcasts() ([]domain.BroadcastRecord, int64, error)
	SaveBroadcast(record *domain.BroadcastRecord) error
}
