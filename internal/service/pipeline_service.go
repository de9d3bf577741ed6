package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/exam-schedule-api/internal/aggregate"
	"github.com/noah-isme/exam-schedule-api/internal/dates"
	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/normalize"
	"github.com/noah-isme/exam-schedule-api/internal/schema"
	"github.com/noah-isme/exam-schedule-api/internal/sheets"
)

// DocumentClient abstracts the upstream spreadsheet service.
type DocumentClient interface {
	ListSheets(ctx context.Context, documentID string) ([]models.SheetInfo, error)
	SheetValues(ctx context.Context, documentID, title string) ([][]string, error)
}

// SnapshotStore persists successful results outside the cache.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot models.Snapshot) error
}

var _ DocumentClient = (*sheets.Client)(nil)

// PipelineService runs the full acquisition and normalization pipeline for a
// source. Concurrent runs for the same source collapse into one upstream
// fetch; a run in flight is never cancelled by its caller going away.
type PipelineService struct {
	client    DocumentClient
	snapshots SnapshotStore
	metrics   *MetricsService
	logger    *zap.Logger
	group     singleflight.Group
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// PipelineServiceParams bundles dependencies for NewPipelineService.
type PipelineServiceParams struct {
	Client    DocumentClient
	Snapshots SnapshotStore
	Metrics   *MetricsService
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewPipelineService constructs the pipeline service.
func NewPipelineService(p PipelineServiceParams) *PipelineService {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &PipelineService{
		client:    p.Client,
		snapshots: p.Snapshots,
		metrics:   p.Metrics,
		logger:    p.Logger,
		now:       now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Run executes the pipeline for one source and returns the fresh result.
// Concurrent calls for the same source id share one execution; a forced run
// keys separately so it never piggybacks on an already-running plain run.
// The per-source lock still serializes a forced run against a plain one, so
// at most one pipeline touches the upstream document at a time.
func (s *PipelineService) Run(ctx context.Context, cfg models.SourceConfig, forced bool) (models.SourceResult, error) {
	key := cfg.ID
	if forced {
		key += ":forced"
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Finish populating shared state even if the triggering request
		// disconnects mid-run.
		runCtx := context.WithoutCancel(ctx)

		lock := s.sourceLock(cfg.ID)
		lock.Lock()
		defer lock.Unlock()
		return s.execute(runCtx, cfg)
	})
	if err != nil {
		return models.SourceResult{}, err
	}
	return v.(models.SourceResult), nil
}

func (s *PipelineService) sourceLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *PipelineService) execute(ctx context.Context, cfg models.SourceConfig) (models.SourceResult, error) {
	start := s.now()
	log := s.logger.With(zap.String("source", cfg.ID))

	infos, err := s.client.ListSheets(ctx, cfg.DocumentID)
	if err != nil {
		s.metrics.ObserveSheetsCall(cfg.ID, "error")
		s.metrics.ObservePipelineRun(cfg.ID, "error", s.now().Sub(start))
		return models.SourceResult{}, err
	}
	s.metrics.ObserveSheetsCall(cfg.ID, "ok")

	manifest, manifestFound := s.loadManifest(ctx, cfg, log)

	rejections := models.RejectionCounts{}
	accepted := 0
	var sheetRecords []aggregate.SheetRecords
	diag := models.RunDiagnostics{
		TotalSheets:   len(infos),
		ManifestFound: manifestFound,
	}

	for _, info := range infos {
		if !candidateSheet(info, cfg.ManifestSheet) {
			diag.SkippedSheets = append(diag.SkippedSheets, info.Title)
			continue
		}

		rows, err := s.client.SheetValues(ctx, cfg.DocumentID, info.Title)
		if err != nil {
			// One broken tab never fails the whole source.
			s.metrics.ObserveSheetsCall(cfg.ID, "error")
			log.Warn("skipping sheet after fetch failure",
				zap.String("sheet", info.Title), zap.Error(err))
			diag.SkippedSheets = append(diag.SkippedSheets, info.Title)
			continue
		}
		s.metrics.ObserveSheetsCall(cfg.ID, "ok")

		det := schema.Detect(rows)
		if !aggregate.HasRealContent(rows, det) {
			log.Debug("sheet holds no usable rows", zap.String("sheet", info.Title))
			diag.SkippedSheets = append(diag.SkippedSheets, info.Title)
			continue
		}

		records := s.normalizeSheet(rows, det, info.Title, cfg, rejections)
		accepted += len(records)
		diag.ActiveSheets = append(diag.ActiveSheets, info.Title)
		sheetRecords = append(sheetRecords, aggregate.SheetRecords{
			Title:   info.Title,
			Records: records,
		})
	}
	diag.Rejections = rejections

	programs := aggregate.Build(sheetRecords, manifest)

	result := models.SourceResult{
		Source: models.SourceInfo{
			ID:        cfg.ID,
			Name:      cfg.DisplayName,
			ShortName: cfg.ShortName,
			Metadata:  cfg.Metadata,
		},
		GeneratedAt: s.now().UTC(),
		Config: models.AppliedConfig{
			DateFilter: cfg.DateFilter,
			DocumentID: cfg.DocumentID,
		},
		Summary:  summarizeResult(programs),
		Programs: programs,
		Debug:    &diag,
	}

	s.metrics.ObserveRows(cfg.ID, accepted, rejectionLabels(rejections))
	s.metrics.ObservePipelineRun(cfg.ID, "success", s.now().Sub(start))
	log.Info("pipeline run complete",
		zap.Int("programs", result.Summary.TotalPrograms),
		zap.Int("exams", result.Summary.TotalExams),
		zap.Int("rows_rejected", rejections.Total()),
		zap.Duration("elapsed", s.now().Sub(start)))

	s.saveSnapshot(ctx, result, log)

	return result, nil
}

// loadManifest fetches and parses the manifest sheet. A missing or broken
// manifest is recovered as an empty program list: sheets then simply find no
// matching program and the result carries zero groups.
func (s *PipelineService) loadManifest(ctx context.Context, cfg models.SourceConfig, log *zap.Logger) (aggregate.Manifest, bool) {
	rows, err := s.client.SheetValues(ctx, cfg.DocumentID, cfg.ManifestSheet)
	if err != nil {
		s.metrics.ObserveSheetsCall(cfg.ID, "error")
		log.Warn("manifest sheet unavailable, continuing with empty program list",
			zap.String("sheet", cfg.ManifestSheet), zap.Error(err))
		return aggregate.Manifest{}, false
	}
	s.metrics.ObserveSheetsCall(cfg.ID, "ok")
	return aggregate.ParseManifest(rows), true
}

func (s *PipelineService) normalizeSheet(rows [][]string, det schema.Detection, sheetTitle string, cfg models.SourceConfig, rejections models.RejectionCounts) []models.ExamRecord {
	var records []models.ExamRecord
	now := s.now()

	for i := det.HeaderRow + 1; i < len(rows); i++ {
		record, reason := normalize.Normalize(rows[i], det.Columns, sheetTitle, i)
		if reason != models.RejectNone {
			rejections.Add(reason)
			continue
		}
		if !dateInWindow(record.Date, cfg.DateFilter, now) {
			rejections.Add(models.RejectDateWindow)
			continue
		}
		records = append(records, *record)
	}
	return records
}

func (s *PipelineService) saveSnapshot(ctx context.Context, result models.SourceResult, log *zap.Logger) {
	if s.snapshots == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		log.Warn("snapshot marshal failed", zap.Error(err))
		return
	}
	snapshot := models.Snapshot{
		SourceID:    result.Source.ID,
		GeneratedAt: result.GeneratedAt,
		StoredAt:    s.now().UTC(),
		Payload:     payload,
	}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		// Snapshots are best-effort audit copies.
		log.Warn("snapshot save failed", zap.Error(err))
	}
}

// candidateSheet keeps visible tabs whose title starts with a digit; the
// manifest tab is handled separately.
func candidateSheet(info models.SheetInfo, manifestTitle string) bool {
	if info.Hidden || info.Title == manifestTitle {
		return false
	}
	for _, r := range info.Title {
		return unicode.IsDigit(r)
	}
	return false
}

func summarizeResult(programs map[string]models.ProgramGroup) models.SourceSummary {
	summary := models.SourceSummary{TotalPrograms: len(programs)}
	for _, group := range programs {
		summary.TotalExams += len(group.Exams)
	}
	return summary
}

func dateInWindow(d models.DateInfo, mode models.DateFilterMode, now time.Time) bool {
	return dates.InWindow(d.Original, mode, now)
}

func rejectionLabels(counts models.RejectionCounts) map[string]int {
	labels := make(map[string]int, len(counts))
	for reason, n := range counts {
		labels[string(reason)] = n
	}
	return labels
}
