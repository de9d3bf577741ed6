package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/registry"
	"github.com/noah-isme/exam-schedule-api/pkg/jobs"
)

// WarmerConfig tunes the background cache warmer.
type WarmerConfig struct {
	Interval    time.Duration
	SourcePause time.Duration
	MaxRetries  int
}

// WarmerService pre-populates the cache by periodically forcing a refresh of
// every registered source. One worker, sources refreshed one at a time with a
// pause between them so the upstream quota is never burst.
type WarmerService struct {
	registry *registry.Registry
	sources  *SourceService
	queue    *jobs.Queue
	logger   *zap.Logger
	cfg      WarmerConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

// NewWarmerService constructs the warmer.
func NewWarmerService(reg *registry.Registry, sources *SourceService, logger *zap.Logger, cfg WarmerConfig) *WarmerService {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.SourcePause <= 0 {
		cfg.SourcePause = 5 * time.Second
	}

	w := &WarmerService{
		registry: reg,
		sources:  sources,
		logger:   logger,
		cfg:      cfg,
	}
	w.queue = jobs.NewQueue("cache-warmer", w.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: len(reg.IDs()) * 2,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return w
}

// Start launches the warmer loop. The first sweep runs immediately.
func (w *WarmerService) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.queue.Start(runCtx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()

		w.sweep()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				w.sweep()
			}
		}
	}()

	w.started = true
	w.logger.Info("cache warmer started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("sources", len(w.registry.IDs())))
}

// Stop halts the loop and waits for in-flight refreshes.
func (w *WarmerService) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.started = false
	w.mu.Unlock()

	w.wg.Wait()
	w.queue.Stop()
}

// sweep enqueues one forced refresh per registered source. A failed enqueue
// skips only that source; the remaining sources still get their refresh.
func (w *WarmerService) sweep() {
	for _, id := range w.registry.IDs() {
		job := jobs.Job{
			ID:       uuid.NewString(),
			SourceID: id,
			Forced:   true,
		}
		if err := w.queue.Enqueue(job); err != nil {
			w.logger.Warn("warmer enqueue failed", zap.String("source", id), zap.Error(err))
			continue
		}
	}
}

func (w *WarmerService) handle(ctx context.Context, job jobs.Job) error {
	start := time.Now()
	_, _, err := w.sources.Get(ctx, job.SourceID, job.Forced)
	if err != nil {
		return err
	}
	w.logger.Info("cache warmed",
		zap.String("source", job.SourceID),
		zap.Duration("elapsed", time.Since(start)))

	// Pace the next source to stay inside the upstream quota.
	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.SourcePause):
	}
	return nil
}
