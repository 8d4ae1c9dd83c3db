package testutil

import (
	"time"

	"coursebot/internal/domain"

	"go.uber.org/zap"
)

// FixedTime is a stable reference instant for tests
var FixedTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user who was last active at seen
func NewTestUser(userID int64, seen time.Time) domain.UserProfile {
	return domain.UserProfile{
		ID:             userID,
		FirstName:      "User",
		JoinedAt:       seen,
		LastActivityAt: seen,
	}
}

// NewTestSubscriber creates a subscribed test user
func NewTestSubscriber(userID int64, seen time.Time) domain.UserProfile {
	u := NewTestUser(userID, seen)
	u.IsSubscriber = true
	return u
}

// NewTestFile creates a catalog entry
func NewTestFile(name, path string) domain.FileEntry {
	return domain.FileEntry{
		Name:        name,
		Path:        path,
		Description: name,
	}
}
