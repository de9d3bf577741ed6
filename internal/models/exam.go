package models

import "time"

// TimeUnspecified is the sentinel stored when a sheet carries no time cell.
const TimeUnspecified = "Sin especificar"

// DateInfo keeps every rendering of an exam date. ISO and Timestamp stay nil
// when the original string could not be parsed as d/m/y.
type DateInfo struct {
	Original  string `json:"original"`
	ISO       string `json:"iso,omitempty"`
	Legible   string `json:"legible"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ExamRecord is one normalized schedule row.
type ExamRecord struct {
	ID           string   `json:"id"`
	SubjectName  string   `json:"subjectName"`
	Date         DateInfo `json:"date"`
	Time         string   `json:"time"`
	ExamType     string   `json:"examType,omitempty"`
	Material     string   `json:"permittedMaterial,omitempty"`
	Monitoring   string   `json:"monitoring,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// ProgramSummary aggregates counts over the records of one program.
type ProgramSummary struct {
	TotalExams int      `json:"totalExams"`
	Dates      []string `json:"dates"`
	ExamTypes  []string `json:"examTypes"`
	Subjects   []string `json:"subjects"`
}

// ProgramGroup collects the exams of one program (degree track).
type ProgramGroup struct {
	Code    string         `json:"code"`
	Name    string         `json:"name"`
	Exams   []ExamRecord   `json:"exams"`
	Summary ProgramSummary `json:"summary"`
}

// AppliedConfig echoes the processing policy a result was produced under.
type AppliedConfig struct {
	DateFilter DateFilterMode `json:"dateFilter"`
	DocumentID string         `json:"documentId"`
}

// SourceSummary totals a full source result.
type SourceSummary struct {
	TotalPrograms int `json:"totalPrograms"`
	TotalExams    int `json:"totalExams"`
}

// SourceInfo is the display identity of a source inside a result.
type SourceInfo struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ShortName string         `json:"shortName"`
	Metadata  SourceMetadata `json:"metadata"`
}

// RunDiagnostics carries sheet-level detail about one pipeline run. Stored
// with the result but only exposed when a caller asks for debug output.
type RunDiagnostics struct {
	TotalSheets   int             `json:"totalSheets"`
	ActiveSheets  []string        `json:"activeSheets"`
	SkippedSheets []string        `json:"skippedSheets"`
	ManifestFound bool            `json:"manifestFound"`
	Rejections    RejectionCounts `json:"rejections,omitempty"`
}

// SourceResult is the full processed output for one source. It is written
// wholesale to the cache and never mutated afterwards.
type SourceResult struct {
	Source      SourceInfo              `json:"source"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Config      AppliedConfig           `json:"appliedConfig"`
	Summary     SourceSummary           `json:"summary"`
	Programs    map[string]ProgramGroup `json:"programs"`
	Debug       *RunDiagnostics         `json:"debug,omitempty"`
}

// SourceStatus is one entry of the source listing. CacheState is one of
// "fresh", "stale" or "empty".
type SourceStatus struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	ShortName  string         `json:"shortName"`
	Available  bool           `json:"available"`
	CacheState string         `json:"cacheState"`
	CachedAt   *time.Time     `json:"cachedAt,omitempty"`
	Metadata   SourceMetadata `json:"metadata"`
}

// CacheEntry wraps a stored result with its write timestamp.
type CacheEntry struct {
	SourceID string       `json:"sourceId"`
	StoredAt time.Time    `json:"storedAt"`
	Payload  SourceResult `json:"payload"`
}

// Snapshot is the persisted history record of a successful pipeline run.
type Snapshot struct {
	SourceID    string    `db:"source_id" json:"sourceId"`
	GeneratedAt time.Time `db:"generated_at" json:"generatedAt"`
	StoredAt    time.Time `db:"stored_at" json:"storedAt"`
	Payload     []byte    `db:"payload" json:"-"`
}

// SnapshotInfo is snapshot metadata without the payload body.
type SnapshotInfo struct {
	SourceID     string    `db:"source_id" json:"sourceId"`
	GeneratedAt  time.Time `db:"generated_at" json:"generatedAt"`
	StoredAt     time.Time `db:"stored_at" json:"storedAt"`
	PayloadBytes int64     `db:"payload_bytes" json:"payloadBytes"`
}
