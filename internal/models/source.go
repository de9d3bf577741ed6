package models

import "time"

// DateFilterMode selects the validity window applied to exam dates.
type DateFilterMode string

const (
	FilterFromToday     DateFilterMode = "today"
	FilterFromYesterday DateFilterMode = "yesterday"
	FilterFromLastWeek  DateFilterMode = "week"
)

// ContactInfo holds public contact details for a source.
type ContactInfo struct {
	Web   string `json:"web,omitempty"`
	Email string `json:"email,omitempty"`
}

// SourceMetadata carries display metadata shared by all sources of a university.
type SourceMetadata struct {
	University  string      `json:"university"`
	Location    string      `json:"location"`
	Web         string      `json:"web"`
	Description string      `json:"description"`
	Contact     ContactInfo `json:"contact"`
}

// SourceConfig is the immutable per-source processing configuration. It is
// built once at startup by the registry and passed explicitly into every
// pipeline invocation.
type SourceConfig struct {
	ID            string         `json:"id"`
	DocumentID    string         `json:"documentId"`
	DisplayName   string         `json:"displayName"`
	ShortName     string         `json:"shortName"`
	APIKey        string         `json:"-"`
	ManifestSheet string         `json:"manifestSheet"`
	CacheTTL      time.Duration  `json:"-"`
	DateFilter    DateFilterMode `json:"dateFilter"`
	Enabled       bool           `json:"enabled"`
	Metadata      SourceMetadata `json:"metadata"`
}

// CacheTTLMinutes reports the freshness window in minutes.
func (c SourceConfig) CacheTTLMinutes() float64 {
	return c.CacheTTL.Minutes()
}
