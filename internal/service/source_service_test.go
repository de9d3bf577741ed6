package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/registry"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

type memCacheRepo struct {
	data map[string][]byte
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{data: map[string][]byte{}}
}

func (m *memCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.ErrCacheMiss
	}
	return nil
}

func (m *memCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCacheRepo) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.data = map[string][]byte{}
	return nil
}

type fakePipeline struct {
	result models.SourceResult
	err    error

	runs   int
	forced []bool
}

func (f *fakePipeline) Run(_ context.Context, _ models.SourceConfig, forced bool) (models.SourceResult, error) {
	f.runs++
	f.forced = append(f.forced, forced)
	if f.err != nil {
		return models.SourceResult{}, f.err
	}
	return f.result, nil
}

func pipelineResult(generatedAt time.Time) models.SourceResult {
	return models.SourceResult{
		Source:      models.SourceInfo{ID: "ingenieria", Name: "Facultad de Ingeniería", ShortName: "FI"},
		GeneratedAt: generatedAt,
		Summary:     models.SourceSummary{TotalPrograms: 1, TotalExams: 2},
	}
}

type sourceServiceFixture struct {
	svc      *SourceService
	cache    *CacheService
	repo     *memCacheRepo
	pipeline *fakePipeline
	now      time.Time
}

func newSourceServiceFixture(t *testing.T) *sourceServiceFixture {
	t.Helper()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	repo := newMemCacheRepo()
	cache := NewCacheService(repo, nil, 24*time.Hour, zap.NewNop(), true)
	cache.now = func() time.Time { return now }

	pipeline := &fakePipeline{result: pipelineResult(now)}
	svc := NewSourceService(SourceServiceParams{
		Registry: registry.New("key"),
		Pipeline: pipeline,
		Cache:    cache,
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return now },
	})
	return &sourceServiceFixture{svc: svc, cache: cache, repo: repo, pipeline: pipeline, now: now}
}

func (f *sourceServiceFixture) seedCache(t *testing.T, age time.Duration) {
	t.Helper()
	entry := models.CacheEntry{
		SourceID: "ingenieria",
		StoredAt: f.now.Add(-age),
		Payload:  pipelineResult(f.now.Add(-age)),
	}
	require.NoError(t, f.repo.Set(context.Background(), cacheKeyPrefix+"ingenieria", entry, 0))
}

func TestGetServesFreshCacheWithoutRunning(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.seedCache(t, 29*time.Minute)

	result, meta, err := f.svc.Get(context.Background(), "ingenieria", false)
	require.NoError(t, err)

	assert.True(t, meta.CacheHit)
	assert.Equal(t, 29, meta.AgeMinutes)
	assert.Equal(t, 0, f.pipeline.runs)
	assert.Equal(t, "ingenieria", result.Source.ID)
}

func TestGetRecomputesExpiredCache(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.seedCache(t, 31*time.Minute)

	_, meta, err := f.svc.Get(context.Background(), "ingenieria", false)
	require.NoError(t, err)

	assert.False(t, meta.CacheHit)
	assert.Equal(t, 1, f.pipeline.runs)

	// The run's output replaced the stale entry.
	entry, found, fresh := f.cache.Read(context.Background(), "ingenieria", 30*time.Minute)
	require.True(t, found)
	assert.True(t, fresh)
	assert.Equal(t, f.now, entry.StoredAt)
}

func TestGetExactTTLBoundaryIsStale(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.seedCache(t, 30*time.Minute)

	_, meta, err := f.svc.Get(context.Background(), "ingenieria", false)
	require.NoError(t, err)
	assert.False(t, meta.CacheHit)
	assert.Equal(t, 1, f.pipeline.runs)
}

func TestForceRefreshBypassesFreshCache(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.seedCache(t, time.Minute)

	_, meta, err := f.svc.Get(context.Background(), "ingenieria", true)
	require.NoError(t, err)

	assert.False(t, meta.CacheHit)
	require.Equal(t, 1, f.pipeline.runs)
	assert.True(t, f.pipeline.forced[0])

	// A follow-up plain read now hits the overwritten entry.
	_, meta, err = f.svc.Get(context.Background(), "ingenieria", false)
	require.NoError(t, err)
	assert.True(t, meta.CacheHit)
	assert.Equal(t, 1, f.pipeline.runs)
}

func TestGetCorruptCacheEntryIsAMiss(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.repo.data[cacheKeyPrefix+"ingenieria"] = []byte("{not json")

	_, meta, err := f.svc.Get(context.Background(), "ingenieria", false)
	require.NoError(t, err)
	assert.False(t, meta.CacheHit)
	assert.Equal(t, 1, f.pipeline.runs)
}

func TestGetUnknownSource(t *testing.T) {
	f := newSourceServiceFixture(t)

	_, _, err := f.svc.Get(context.Background(), "medicina", false)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSourceNotFound.Code, appErr.Code)
	assert.Equal(t, 0, f.pipeline.runs)
}

func TestGetPipelineFailurePropagates(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.pipeline.err = errors.New("upstream down")

	_, _, err := f.svc.Get(context.Background(), "ingenieria", false)
	require.Error(t, err)
}

func TestListReportsCacheStates(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.seedCache(t, 10*time.Minute)

	statuses := f.svc.List(context.Background())
	require.Len(t, statuses, 7)

	byID := map[string]models.SourceStatus{}
	for _, status := range statuses {
		byID[status.ID] = status
	}

	assert.Equal(t, "fresh", byID["ingenieria"].CacheState)
	require.NotNil(t, byID["ingenieria"].CachedAt)
	assert.Equal(t, "empty", byID["turismo"].CacheState)
	assert.True(t, byID["turismo"].Available)
	assert.Equal(t, 0, f.pipeline.runs)
}

func TestInvalidateDropsEntry(t *testing.T) {
	f := newSourceServiceFixture(t)
	f.seedCache(t, time.Minute)

	require.NoError(t, f.svc.Invalidate(context.Background(), "ingenieria"))
	_, found, _ := f.cache.Read(context.Background(), "ingenieria", 30*time.Minute)
	assert.False(t, found)
}
