package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"coursebot/internal/clock"
	"coursebot/internal/domain"
	"coursebot/internal/repository"

	"go.uber.org/zap"
)

// SendPace is the pause after every successful delivery
const SendPace = 100 * time.Millisecond

// Delivery outcomes reported to the tracker
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeBlocked = "blocked"
	OutcomeSkipped = "skipped"
)

// Sender delivers one message to one user.
// Failures caused by the user blocking the bot must wrap domain.ErrRecipientBlocked.
type Sender interface {
	Send(ctx context.Context, userID int64, msg domain.OutboundMessage) error
}

// MessageValidator checks and sanitizes broadcast text
type MessageValidator interface {
	Validate(text string) (string, error)
}

// Tracker receives delivery and broadcast analytics
type Tracker interface {
	TrackDelivery(outcome string)
	TrackBroadcast(record domain.BroadcastRecord, duration time.Duration)
}

// BroadcastService delivers announcements to registry audiences under the rate limit
type BroadcastService struct {
	registry  *RegistryService
	repo      repository.BroadcastRepository
	sender    Sender
	validator MessageValidator
	limiter   *Limiter
	tracker   Tracker
	clock     clock.Clock
	logger    *zap.Logger

	mu      sync.Mutex
	records []*domain.BroadcastRecord
	lastID  int64
}

// NewBroadcastService creates a broadcast engine
func NewBroadcastService(
	registry *RegistryService,
	repo repository.BroadcastRepository,
	sender Sender,
	validator MessageValidator,
	limiter *Limiter,
	tracker Tracker,
	clk clock.Clock,
	logger *zap.Logger,
) *BroadcastService {
	return &BroadcastService{
		registry:  registry,
		repo:      repo,
		sender:    sender,
		validator: validator,
		limiter:   limiter,
		tracker:   tracker,
		clock:     clk,
		logger:    logger,
	}
}

// Load reads broadcast history and marks runs left unfinished by a previous
// process as interrupted. It returns how many records were interrupted.
func (s *BroadcastService) Load() (int, error) {
	records, lastID, err := s.repo.LoadBroadcasts()
	if err != nil {
		return 0, fmt.Errorf("failed to load broadcasts: %w", err)
	}

	now := s.clock.Now()
	var interrupted []domain.BroadcastRecord

	s.mu.Lock()
	s.records = make([]*domain.BroadcastRecord, 0, len(records))
	s.lastID = lastID
	for i := range records {
		rec := records[i]
		if rec.ID > s.lastID {
			s.lastID = rec.ID
		}
		if rec.Status == domain.StatusPending || rec.Status == domain.StatusSending {
			rec.Status = domain.StatusInterrupted
			rec.CompletedAt = &now
			interrupted = append(interrupted, rec)
		}
		s.records = append(s.records, &rec)
	}
	s.mu.Unlock()

	for i := range interrupted {
		s.logger.Warn("Broadcast was interrupted by a restart",
			zap.Int64("broadcast_id", interrupted[i].ID),
			zap.Int("sent", interrupted[i].SentCount),
			zap.Int("target", interrupted[i].TargetCount),
		)
		s.persist(interrupted[i])
	}

	s.logger.Info("Broadcast history loaded",
		zap.Int("broadcasts", len(records)),
		zap.Int64("last_id", lastID),
	)
	return len(interrupted), nil
}

// SendBroadcast validates message, admits the run and delivers it to every target.
// Validation failures wrap domain.ErrInvalidMessage; admission failures return
// domain.ErrRateLimited. In both cases no record is created.
func (s *BroadcastService) SendBroadcast(ctx context.Context, message string, opts domain.BroadcastOptions) (*domain.BroadcastResult, error) {
	text, err := s.validator.Validate(message)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidMessage) {
			err = fmt.Errorf("%w: %v", domain.ErrInvalidMessage, err)
		}
		return nil, err
	}

	if s.limiter.Exhausted() {
		return nil, domain.ErrRateLimited
	}

	if opts.TargetType == "" {
		opts.TargetType = domain.TargetAll
	}
	if opts.Priority == "" {
		opts.Priority = domain.PriorityNormal
	}

	started := s.clock.Now()

	s.mu.Lock()
	s.lastID++
	rec := &domain.BroadcastRecord{
		ID:         s.lastID,
		Message:    text,
		Media:      opts.Media,
		AdminID:    opts.AdminID,
		TargetType: opts.TargetType,
		Priority:   opts.Priority,
		CreatedAt:  started,
		Status:     domain.StatusPending,
	}
	s.records = append(s.records, rec)
	pending := *rec
	s.mu.Unlock()

	s.persist(pending)

	targets := s.registry.Targets(opts.TargetType)
	s.update(rec, func(r *domain.BroadcastRecord) {
		r.TargetCount = len(targets)
		r.Status = domain.StatusSending
	})

	s.logger.Info("Broadcast started",
		zap.Int64("broadcast_id", rec.ID),
		zap.String("target_type", string(opts.TargetType)),
		zap.Int("targets", len(targets)),
	)

	msg := domain.OutboundMessage{
		Text:    text,
		Media:   opts.Media,
		Buttons: opts.Buttons,
	}

	if err := s.deliver(ctx, rec, targets, msg); err != nil {
		final := s.update(rec, func(r *domain.BroadcastRecord) {
			now := s.clock.Now()
			r.Status = domain.StatusInterrupted
			r.CompletedAt = &now
		})
		s.logger.Warn("Broadcast interrupted",
			zap.Int64("broadcast_id", rec.ID),
			zap.Int("sent", final.SentCount),
			zap.Error(err),
		)
		return resultOf(final), err
	}

	final := s.update(rec, func(r *domain.BroadcastRecord) {
		now := s.clock.Now()
		r.Status = domain.StatusCompleted
		r.CompletedAt = &now
	})

	if s.tracker != nil {
		s.tracker.TrackBroadcast(final, s.clock.Now().Sub(started))
	}

	s.logger.Info("Broadcast completed",
		zap.Int64("broadcast_id", final.ID),
		zap.Int("target", final.TargetCount),
		zap.Int("sent", final.SentCount),
		zap.Int("failed", final.FailedCount),
		zap.Int("blocked", final.BlockedCount),
	)
	return resultOf(final), nil
}

// deliver sends msg to every target once. Only context cancellation stops it early.
func (s *BroadcastService) deliver(ctx context.Context, rec *domain.BroadcastRecord, targets []int64, msg domain.OutboundMessage) error {
	for _, userID := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		// the user may have been blocked since targets were resolved
		if s.registry.IsBlocked(userID) {
			s.count(rec, func(r *domain.BroadcastRecord) { r.BlockedCount++ })
			s.track(OutcomeSkipped)
			continue
		}

		if err := s.limiter.Acquire(ctx); err != nil {
			return err
		}

		err := s.sender.Send(ctx, userID, msg)
		if err == nil {
			s.count(rec, func(r *domain.BroadcastRecord) { r.SentCount++ })
			s.track(OutcomeSent)
			if err := s.clock.Sleep(ctx, SendPace); err != nil {
				return err
			}
			continue
		}

		if errors.Is(err, domain.ErrRecipientBlocked) {
			s.registry.Block(userID)
			s.count(rec, func(r *domain.BroadcastRecord) {
				r.FailedCount++
				r.BlockedCount++
			})
			s.track(OutcomeBlocked)
			s.logger.Info("Recipient blocked the bot",
				zap.Int64("broadcast_id", rec.ID),
				zap.Int64("user_id", userID),
			)
			continue
		}

		s.count(rec, func(r *domain.BroadcastRecord) { r.FailedCount++ })
		s.track(OutcomeFailed)
		s.logger.Warn("Failed to deliver broadcast",
			zap.Int64("broadcast_id", rec.ID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return nil
}

// History returns up to limit records, newest first. limit <= 0 returns all.
func (s *BroadcastService) History(limit int) []domain.BroadcastRecord {
	s.mu.Lock()
	history := make([]domain.BroadcastRecord, 0, len(s.records))
	for _, r := range s.records {
		history = append(history, *r)
	}
	s.mu.Unlock()

	sort.SliceStable(history, func(i, j int) bool {
		if history[i].CreatedAt.Equal(history[j].CreatedAt) {
			return history[i].ID > history[j].ID
		}
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})

	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// Stats aggregates registry, limiter and history figures
func (s *BroadcastService) Stats() domain.BroadcastStats {
	stats := domain.BroadcastStats{
		Registry:         s.registry.Counts(),
		RateLimit:        s.limiter.Snapshot(),
		TargetTypeCounts: make(map[domain.TargetType]int),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats.HistoryCount = len(s.records)

	var rateSum float64
	for _, r := range s.records {
		stats.TargetTypeCounts[r.TargetType]++
		if r.Status != domain.StatusCompleted {
			continue
		}
		stats.TotalBroadcasts++
		stats.TotalSent += r.SentCount
		stats.TotalFailed += r.FailedCount
		rateSum += r.SuccessRate()
	}
	if stats.TotalBroadcasts > 0 {
		stats.AverageSuccess = rateSum / float64(stats.TotalBroadcasts)
	}
	return stats
}

// update applies fn under the lock and persists the result
func (s *BroadcastService) update(rec *domain.BroadcastRecord, fn func(*domain.BroadcastRecord)) domain.BroadcastRecord {
	s.mu.Lock()
	fn(rec)
	snapshot := *rec
	s.mu.Unlock()

	s.persist(snapshot)
	return snapshot
}

// count applies fn under the lock without persisting
func (s *BroadcastService) count(rec *domain.BroadcastRecord, fn func(*domain.BroadcastRecord)) {
	s.mu.Lock()
	fn(rec)
	s.mu.Unlock()
}

func (s *BroadcastService) track(outcome string) {
	if s.tracker != nil {
		s.tracker.TrackDelivery(outcome)
	}
}

// persist saves a record. Failures are logged, not returned.
func (s *BroadcastService) persist(rec domain.BroadcastRecord) {
	if err := s.repo.SaveBroadcast(&rec); err != nil {
		s.logger.Error("Failed to persist broadcast",
			zap.Int64("broadcast_id", rec.ID),
			zap.String("status", string(rec.Status)),
			zap.Error(err),
		)
	}
}

func resultOf(rec domain.BroadcastRecord) *domain.BroadcastResult {
	return &domain.BroadcastResult{
		BroadcastID:  rec.ID,
		TargetCount:  rec.TargetCount,
		SentCount:    rec.SentCount,
		FailedCount:  rec.FailedCount,
		BlockedCount: rec.BlockedCount,
	}
}
