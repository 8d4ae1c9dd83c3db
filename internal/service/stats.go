package service

import (
	"coursebot/internal/domain"

	"go.uber.org/zap"
)

// UsageGauges receives periodic usage figures
type UsageGauges interface {
	ObserveRegistry(counts domain.RegistryCounts)
	ObserveRateLimit(snapshot domain.RateLimitSnapshot)
}

// StatsService reports registry and rate limit usage
type StatsService struct {
	registry *RegistryService
	limiter  *Limiter
	gauges   UsageGauges
	logger   *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(registry *RegistryService, limiter *Limiter, gauges UsageGauges, logger *zap.Logger) *StatsService {
	return &StatsService{
		registry: registry,
		limiter:  limiter,
		gauges:   gauges,
		logger:   logger,
	}
}

// Report logs current usage and publishes it to the gauges
func (s *StatsService) Report() domain.RegistryCounts {
	counts := s.registry.Counts()
	limit := s.limiter.Snapshot()

	if s.gauges != nil {
		s.gauges.ObserveRegistry(counts)
		s.gauges.ObserveRateLimit(limit)
	}

	s.logger.Info("Usage report",
		zap.Int("users", counts.Total),
		zap.Int("subscribers", counts.Subscribers),
		zap.Int("active", counts.Active),
		zap.Int("blocked", counts.Blocked),
		zap.Int("sent_last_minute", limit.SentLastMinute),
		zap.Int("sent_last_hour", limit.SentLastHour),
	)
	return counts
}
