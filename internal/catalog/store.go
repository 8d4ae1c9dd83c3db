package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"coursebot/internal/domain"
	"coursebot/internal/repository/jsonfile"

	"go.uber.org/zap"
)

// Scanner produces a fresh file mapping
type Scanner interface {
	Scan(ctx context.Context) (domain.FileMapping, error)
}

// RefreshResult summarizes a refreshed mapping
type RefreshResult struct {
	TotalFiles int
	Scopes     int
}

// Store holds the current file mapping and replaces it atomically
type Store struct {
	current atomic.Pointer[domain.FileMapping]
	path    string
	scanner Scanner
	logger  *zap.Logger
}

// NewStore creates a store backed by the mapping artifact at path
func NewStore(path string, scanner Scanner, logger *zap.Logger) *Store {
	s := &Store{
		path:    path,
		scanner: scanner,
		logger:  logger,
	}
	empty := domain.FileMapping{}
	s.current.Store(&empty)
	return s
}

// Load reads the mapping artifact. A missing artifact leaves the mapping empty.
func (s *Store) Load() error {
	mapping := domain.FileMapping{}
	found, err := jsonfile.ReadJSON(s.path, &mapping)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Warn("File mapping not found, starting with empty catalog", zap.String("path", s.path))
	}

	s.Swap(mapping)
	s.logger.Info("File mapping loaded",
		zap.String("path", s.path),
		zap.Int("scopes", len(mapping)),
		zap.Int("files", mapping.TotalFiles()),
	)
	return nil
}

// Mapping returns the current snapshot. Callers must not mutate it.
func (s *Store) Mapping() domain.FileMapping {
	return *s.current.Load()
}

// Swap replaces the whole mapping in one step
func (s *Store) Swap(mapping domain.FileMapping) {
	if mapping == nil {
		mapping = domain.FileMapping{}
	}
	s.current.Store(&mapping)
}

// Refresh rescans the content tree, saves the artifact and swaps the mapping.
// On scan failure the previous mapping stays in place.
func (s *Store) Refresh(ctx context.Context) (*RefreshResult, error) {
	if s.scanner == nil {
		return nil, fmt.Errorf("no scanner configured")
	}

	mapping, err := s.scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}

	if err := jsonfile.WriteJSON(s.path, mapping); err != nil {
		// the in-memory catalog is still usable
		s.logger.Error("Failed to save file mapping", zap.String("path", s.path), zap.Error(err))
	}

	s.Swap(mapping)

	result := &RefreshResult{
		TotalFiles: mapping.TotalFiles(),
		Scopes:     len(mapping),
	}
	s.logger.Info("File mapping refreshed",
		zap.Int("scopes", result.Scopes),
		zap.Int("files", result.TotalFiles),
	)
	return result, nil
}
