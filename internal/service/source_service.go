package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/registry"
)

// pipelineRunner abstracts PipelineService for tests.
type pipelineRunner interface {
	Run(ctx context.Context, cfg models.SourceConfig, forced bool) (models.SourceResult, error)
}

// ResultMeta describes how a returned result was obtained.
type ResultMeta struct {
	CacheHit      bool
	AgeMinutes    int
	NextRefreshAt time.Time
}

// SourceService is the read path for schedules: resolve the source, consult
// the cache, fall back to a pipeline run, write the cache on success.
type SourceService struct {
	registry *registry.Registry
	pipeline pipelineRunner
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
}

// SourceServiceParams bundles dependencies for NewSourceService.
type SourceServiceParams struct {
	Registry *registry.Registry
	Pipeline pipelineRunner
	Cache    *CacheService
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewSourceService constructs the source service.
func NewSourceService(p SourceServiceParams) *SourceService {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &SourceService{
		registry: p.Registry,
		pipeline: p.Pipeline,
		cache:    p.Cache,
		logger:   p.Logger,
		now:      now,
	}
}

// Get returns the processed schedule for a source. force bypasses the cache
// freshness check but a successful run still overwrites the cached entry.
func (s *SourceService) Get(ctx context.Context, id string, force bool) (models.SourceResult, ResultMeta, error) {
	cfg, err := s.registry.Resolve(id)
	if err != nil {
		return models.SourceResult{}, ResultMeta{}, err
	}

	if !force {
		entry, found, fresh := s.cache.Read(ctx, id, cfg.CacheTTL)
		if found && fresh {
			age := s.now().Sub(entry.StoredAt)
			return entry.Payload, ResultMeta{
				CacheHit:      true,
				AgeMinutes:    int(age.Minutes()),
				NextRefreshAt: entry.StoredAt.Add(cfg.CacheTTL),
			}, nil
		}
	}

	result, err := s.pipeline.Run(ctx, cfg, force)
	if err != nil {
		return models.SourceResult{}, ResultMeta{}, err
	}

	if writeErr := s.cache.Write(ctx, id, result); writeErr != nil {
		// The result is still good; the next request just recomputes.
		s.logger.Warn("serving uncached result", zap.String("source", id), zap.Error(writeErr))
	}

	return result, ResultMeta{
		CacheHit:      false,
		AgeMinutes:    0,
		NextRefreshAt: s.now().Add(cfg.CacheTTL),
	}, nil
}

// List reports every registered source with its cache state. It never fails
// wholesale; a broken cache simply shows as empty.
func (s *SourceService) List(ctx context.Context) []models.SourceStatus {
	configs := s.registry.All()
	statuses := make([]models.SourceStatus, 0, len(configs))

	for _, cfg := range configs {
		status := models.SourceStatus{
			ID:         cfg.ID,
			Name:       cfg.DisplayName,
			ShortName:  cfg.ShortName,
			Available:  cfg.Enabled && cfg.APIKey != "",
			CacheState: "empty",
			Metadata:   cfg.Metadata,
		}

		entry, found, fresh := s.cache.Read(ctx, cfg.ID, cfg.CacheTTL)
		if found {
			storedAt := entry.StoredAt
			status.CachedAt = &storedAt
			if fresh {
				status.CacheState = "fresh"
			} else {
				status.CacheState = "stale"
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Invalidate drops the cached result for a source.
func (s *SourceService) Invalidate(ctx context.Context, id string) error {
	if _, err := s.registry.Resolve(id); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, id)
}
