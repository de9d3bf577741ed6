package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

const cacheKeyPrefix = "cronograma:src:"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService stores per-source pipeline results. Entries live in Redis for
// the retention window; freshness within that window is decided by comparing
// the entry's StoredAt against the source's TTL, so a stale entry can still
// report its age instead of silently vanishing.
type CacheService struct {
	repo      CacheRepository
	metrics   *MetricsService
	retention time.Duration
	logger    *zap.Logger
	enabled   bool
	now       func() time.Time
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, retention time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &CacheService{
		repo:      repo,
		metrics:   metrics,
		retention: retention,
		logger:    logger,
		enabled:   enabled,
		now:       time.Now,
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Read looks up the cached result for a source. fresh reports whether the
// entry is younger than maxAge. A miss, a corrupt entry, or a disabled cache
// all return found=false.
func (s *CacheService) Read(ctx context.Context, sourceID string, maxAge time.Duration) (entry models.CacheEntry, found bool, fresh bool) {
	if !s.Enabled() {
		return models.CacheEntry{}, false, false
	}

	err := s.repo.Get(ctx, cacheKeyPrefix+sourceID, &entry)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) && s.logger != nil {
			s.logger.Warn("cache read failed", zap.String("source", sourceID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
		return models.CacheEntry{}, false, false
	}

	age := s.now().Sub(entry.StoredAt)
	fresh = maxAge > 0 && age < maxAge
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(fresh)
	}
	return entry, true, fresh
}

// Write stores a pipeline result for a source. The Redis TTL is the retention
// window, not the freshness TTL.
func (s *CacheService) Write(ctx context.Context, sourceID string, result models.SourceResult) error {
	if !s.Enabled() {
		return nil
	}

	entry := models.CacheEntry{
		SourceID: sourceID,
		StoredAt: s.now(),
		Payload:  result,
	}
	if err := s.repo.Set(ctx, cacheKeyPrefix+sourceID, entry, s.retention); err != nil {
		if s.logger != nil {
			s.logger.Warn("cache write failed", zap.String("source", sourceID), zap.Error(err))
		}
		return err
	}
	return nil
}

// Invalidate removes the cached result for a single source.
func (s *CacheService) Invalidate(ctx context.Context, sourceID string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.Delete(ctx, cacheKeyPrefix+sourceID); err != nil {
		if s.logger != nil {
			s.logger.Warn("cache invalidate failed", zap.String("source", sourceID), zap.Error(err))
		}
		return err
	}
	return nil
}

// InvalidateAll drops every cached result.
func (s *CacheService) InvalidateAll(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.DeleteByPattern(ctx, cacheKeyPrefix+"*")
}
