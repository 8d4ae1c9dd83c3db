package testutil

import (
	"context"
	"time"

	"coursebot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) LoadUsers() ([]domain.UserProfile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserProfile), args.Error(1)
}

func (m *MockUserRepository) SaveUser(user *domain.UserProfile) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveAll(users []domain.UserProfile) error {
	args := m.Called(users)
	return args.Error(0)
}

// MockBroadcastRepository is a mock for BroadcastRepository
type MockBroadcastRepository struct {
	mock.Mock
}

func (m *MockBroadcastRepository) LoadBroadcasts() ([]domain.BroadcastRecord, int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.BroadcastRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockBroadcastRepository) SaveBroadcast(record *domain.BroadcastRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

// MockSender is a mock for the broadcast Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, userID int64, msg domain.OutboundMessage) error {
	args := m.Called(ctx, userID, msg)
	return args.Error(0)
}

// MockTracker is a mock for the broadcast Tracker
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) TrackDelivery(outcome string) {
	m.Called(outcome)
}

func (m *MockTracker) TrackBroadcast(record domain.BroadcastRecord, duration time.Duration) {
	m.Called(record, duration)
}
