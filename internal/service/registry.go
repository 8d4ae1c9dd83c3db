package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"coursebot/internal/clock"
	"coursebot/internal/domain"
	"coursebot/internal/repository"

	"go.uber.org/zap"
)

// RegistryService manages registered users and their subscriptions.
// Every mutation is written through to the repository.
type RegistryService struct {
	repo   repository.UserRepository
	clock  clock.Clock
	logger *zap.Logger

	mu          sync.RWMutex
	users       map[int64]*domain.UserProfile
	subscribers map[int64]struct{}
}

// NewRegistryService creates an empty registry
func NewRegistryService(repo repository.UserRepository, clk clock.Clock, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		repo:        repo,
		clock:       clk,
		logger:      logger,
		users:       make(map[int64]*domain.UserProfile),
		subscribers: make(map[int64]struct{}),
	}
}

// Load replaces the in-memory registry with the persisted one
func (s *RegistryService) Load() error {
	users, err := s.repo.LoadUsers()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(users)

	s.logger.Info("User registry loaded",
		zap.Int("users", len(s.users)),
		zap.Int("subscribers", len(s.subscribers)),
	)
	return nil
}

// replace swaps state for users. Caller holds mu.
func (s *RegistryService) replace(users []domain.UserProfile) {
	s.users = make(map[int64]*domain.UserProfile, len(users))
	s.subscribers = make(map[int64]struct{})
	for i := range users {
		u := users[i]
		if u.IsBlocked {
			u.IsSubscriber = false
		}
		s.users[u.ID] = &u
		if u.IsSubscriber {
			s.subscribers[u.ID] = struct{}{}
		}
	}
}

// RegisterUser creates a profile on first sight, otherwise records activity.
// It returns true when a new profile was created.
func (s *RegistryService) RegisterUser(info domain.UserInfo) bool {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[info.ID]
	if !exists {
		u = &domain.UserProfile{
			ID:             info.ID,
			FirstName:      info.FirstName,
			LastName:       info.LastName,
			Username:       info.Username,
			JoinedAt:       now,
			LastActivityAt: now,
		}
		s.users[info.ID] = u
		s.logger.Info("New user registered", zap.Int64("user_id", info.ID))
	} else {
		u.LastActivityAt = now
		u.MessageCount++
		if info.FirstName != "" {
			u.FirstName = info.FirstName
		}
		u.LastName = info.LastName
		u.Username = info.Username
	}

	s.persist(u)
	return !exists
}

// Subscribe adds the user to the subscriber set.
// It returns false when nothing changed. Blocked users cannot subscribe.
func (s *RegistryService) Subscribe(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscribers[userID]; ok {
		return false
	}
	u, ok := s.users[userID]
	if !ok || u.IsBlocked {
		// only registered, unblocked users can be subscribers
		return false
	}
	s.subscribers[userID] = struct{}{}
	u.IsSubscriber = true

	s.persist(u)
	return true
}

// Unsubscribe removes the user from the subscriber set.
// It returns false when nothing changed.
func (s *RegistryService) Unsubscribe(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscribers[userID]; !ok {
		return false
	}
	delete(s.subscribers, userID)

	if u, ok := s.users[userID]; ok {
		u.IsSubscriber = false
		s.persist(u)
	}
	return true
}

// Block marks the user blocked and unsubscribes them.
// It returns false for unknown users.
func (s *RegistryService) Block(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.IsBlocked = true
	u.IsSubscriber = false
	delete(s.subscribers, userID)

	s.logger.Info("User blocked", zap.Int64("user_id", userID))
	s.persist(u)
	return true
}

// Unblock clears the blocked flag. It returns false for unknown users.
func (s *RegistryService) Unblock(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.IsBlocked = false

	s.persist(u)
	return true
}

// Get returns a copy of the user's profile
func (s *RegistryService) Get(userID int64) (domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return domain.UserProfile{}, false
	}
	return *u, true
}

// IsBlocked reports whether the user is currently blocked
func (s *RegistryService) IsBlocked(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	return ok && u.IsBlocked
}

// IsSubscribed reports whether the user is in the subscriber set
func (s *RegistryService) IsSubscribed(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.subscribers[userID]
	return ok
}

// ListUsers returns users matching filter, most recently active first.
// limit <= 0 returns every match.
func (s *RegistryService) ListUsers(filter domain.UserFilter, limit int) []domain.UserProfile {
	now := s.clock.Now()

	s.mu.RLock()
	var users []domain.UserProfile
	for _, u := range s.users {
		if matchesFilter(u, filter, now) {
			users = append(users, *u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].LastActivityAt.Equal(users[j].LastActivityAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].LastActivityAt.After(users[j].LastActivityAt)
	})

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users
}

func matchesFilter(u *domain.UserProfile, filter domain.UserFilter, now time.Time) bool {
	switch filter {
	case domain.FilterSubscribers:
		return u.IsSubscriber
	case domain.FilterActive:
		return u.IsActive(now)
	case domain.FilterBlocked:
		return u.IsBlocked
	default:
		return true
	}
}

// Targets resolves a broadcast audience. Blocked users are never included.
// IDs are returned in ascending order.
func (s *RegistryService) Targets(target domain.TargetType) []int64 {
	now := s.clock.Now()

	s.mu.RLock()
	var ids []int64
	switch target {
	case domain.TargetSubscribers:
		for id := range s.subscribers {
			if u, ok := s.users[id]; ok && !u.IsBlocked {
				ids = append(ids, id)
			}
		}
	case domain.TargetActive:
		for id, u := range s.users {
			if !u.IsBlocked && u.IsActive(now) {
				ids = append(ids, id)
			}
		}
	default:
		for id, u := range s.users {
			if !u.IsBlocked {
				ids = append(ids, id)
			}
		}
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Counts summarizes the registry
func (s *RegistryService) Counts() domain.RegistryCounts {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := domain.RegistryCounts{
		Total:       len(s.users),
		Subscribers: len(s.subscribers),
	}
	for _, u := range s.users {
		if u.IsBlocked {
			counts.Blocked++
		}
		if u.IsActive(now) {
			counts.Active++
		}
	}
	return counts
}

// Export returns the registry in its persisted shape
func (s *RegistryService) Export() domain.RegistrySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := domain.RegistrySnapshot{
		Users:       make(map[int64]*domain.UserProfile, len(s.users)),
		Subscribers: make([]int64, 0, len(s.subscribers)),
		TotalUsers:  len(s.users),
	}
	for id, u := range s.users {
		copied := *u
		snapshot.Users[id] = &copied
	}
	for id := range s.subscribers {
		snapshot.Subscribers = append(snapshot.Subscribers, id)
	}
	sort.Slice(snapshot.Subscribers, func(i, j int) bool {
		return snapshot.Subscribers[i] < snapshot.Subscribers[j]
	})
	return snapshot
}

// Import replaces the registry with snapshot and persists it
func (s *RegistryService) Import(snapshot domain.RegistrySnapshot) error {
	subscribed := make(map[int64]bool, len(snapshot.Subscribers))
	for _, id := range snapshot.Subscribers {
		subscribed[id] = true
	}

	users := make([]domain.UserProfile, 0, len(snapshot.Users))
	for id, u := range snapshot.Users {
		if u == nil {
			continue
		}
		profile := *u
		profile.ID = id
		profile.IsSubscriber = (profile.IsSubscriber || subscribed[id]) && !profile.IsBlocked
		users = append(users, profile)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	s.mu.Lock()
	s.replace(users)
	s.mu.Unlock()

	if err := s.repo.SaveAll(users); err != nil {
		return fmt.Errorf("failed to save imported users: %w", err)
	}
	s.logger.Info("User registry imported", zap.Int("users", len(users)))
	return nil
}

// persist writes one profile. Failures are logged, not returned. Caller holds mu.
func (s *RegistryService) persist(u *domain.UserProfile) {
	snapshot := *u
	if err := s.repo.SaveUser(&snapshot); err != nil {
		s.logger.Error("Failed to persist user",
			zap.Int64("user_id", u.ID),
			zap.Error(err),
		)
	}
}
