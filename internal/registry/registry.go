// Package registry holds the static catalog of sources (academic units) and
// resolves per-source processing configuration. The catalog is data: adding a
// unit means adding an entry, never new code.
package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

const (
	defaultManifestSheet = "_CONTENIDO_"
	defaultCacheTTL      = 30 * time.Minute
)

var universityMetadata = models.SourceMetadata{
	University:  "Universidad Católica de Salta",
	Location:    "Salta, Argentina",
	Web:         "https://www.ucasal.edu.ar",
	Description: "Cronogramas de exámenes de la Universidad Católica de Salta",
}

// entry is one catalog row before credential and default resolution.
type entry struct {
	id          string
	documentID  string
	displayName string
	shortName   string
	dateFilter  models.DateFilterMode
	cacheTTL    time.Duration
	enabled     bool
}

var catalog = []entry{
	{
		id:          "economia-administracion",
		documentID:  "1NVGjcJFoJigektPblUdHuzGqVsY7PiD-hZuLBqe4MNk",
		displayName: "Facultad de Economía y Administración",
		shortName:   "FEA",
		enabled:     true,
	},
	{
		id:          "ciencias-juridicas",
		documentID:  "14_ODC3bZL4EarjzG62M9TpNdiXNUYG8aymy1QsHu_qc",
		displayName: "Facultad de Ciencias Jurídicas",
		shortName:   "FCJ",
		enabled:     true,
	},
	{
		id:          "arquitectura-urbanismo",
		documentID:  "1xJBRTnfNMlcfGHLo_9y96taH5JCNdlIw_fYiuAIy7kQ",
		displayName: "Facultad de Arquitectura y Urbanismo",
		shortName:   "FAU",
		enabled:     true,
	},
	{
		id:          "educacion-fisica",
		documentID:  "1cUk1wAObM1u0ErEIh98XXz6NTxGcKLVt3orJczSgCAU",
		displayName: "Escuela Universitaria de Educación Física",
		shortName:   "EUEF",
		enabled:     true,
	},
	{
		id:          "educacion",
		documentID:  "1G2gL5bqy85gE5mOGTTlN7PPTAbKoeIcDYJineSPqut0",
		displayName: "Facultad de Educación",
		shortName:   "FE",
		enabled:     true,
	},
	{
		id:          "ingenieria",
		documentID:  "10-IUeW-NZMvZkwwxxjspdNG9-jbBvtXhgWG3Bcwxqr0",
		displayName: "Facultad de Ingeniería",
		shortName:   "FI",
		enabled:     true,
	},
	{
		id:          "turismo",
		documentID:  "1saPHBuYV0L6_NN1mcsEABIDCKa2SXINMYK2sZIsOxwo",
		displayName: "Facultad de Turismo",
		shortName:   "FT",
		enabled:     true,
	},
}

// Registry resolves immutable source configurations. Built once at startup
// and injected into every pipeline invocation.
type Registry struct {
	apiKey     string
	defaultTTL time.Duration
	sources    map[string]models.SourceConfig
	order      []string
}

// Option tweaks registry construction.
type Option func(*Registry)

// WithDefaultTTL overrides the catalog-wide freshness window.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.defaultTTL = ttl
		}
	}
}

// New builds the registry with the shared API credential applied to every
// catalog entry.
func New(apiKey string, opts ...Option) *Registry {
	r := &Registry{
		apiKey:     apiKey,
		defaultTTL: defaultCacheTTL,
		sources:    make(map[string]models.SourceConfig, len(catalog)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, e := range catalog {
		cfg := models.SourceConfig{
			ID:            e.id,
			DocumentID:    e.documentID,
			DisplayName:   e.displayName,
			ShortName:     e.shortName,
			APIKey:        apiKey,
			ManifestSheet: defaultManifestSheet,
			CacheTTL:      e.cacheTTL,
			DateFilter:    e.dateFilter,
			Enabled:       e.enabled,
			Metadata:      metadataFor(e),
		}
		if cfg.CacheTTL <= 0 {
			cfg.CacheTTL = r.defaultTTL
		}
		if cfg.DateFilter == "" {
			cfg.DateFilter = models.FilterFromToday
		}
		r.sources[e.id] = cfg
		r.order = append(r.order, e.id)
	}
	sort.Strings(r.order)

	return r
}

// Resolve returns the configuration for a source id.
func (r *Registry) Resolve(id string) (models.SourceConfig, error) {
	cfg, ok := r.sources[id]
	if !ok {
		return models.SourceConfig{}, appErrors.Clone(appErrors.ErrSourceNotFound, fmt.Sprintf("unknown source %q", id))
	}
	if cfg.APIKey == "" {
		return models.SourceConfig{}, appErrors.Clone(appErrors.ErrCredentialMissing, fmt.Sprintf("source %q: sheets API credential is not configured", id))
	}
	return cfg, nil
}

// All returns every registered source in stable id order.
func (r *Registry) All() []models.SourceConfig {
	configs := make([]models.SourceConfig, 0, len(r.order))
	for _, id := range r.order {
		configs = append(configs, r.sources[id])
	}
	return configs
}

// IDs returns the registered source ids in stable order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func metadataFor(e entry) models.SourceMetadata {
	meta := universityMetadata
	meta.Description = fmt.Sprintf("Cronogramas de exámenes de la %s de la Universidad Católica de Salta", e.displayName)
	meta.Contact = models.ContactInfo{
		Web:   fmt.Sprintf("https://www.ucasal.edu.ar/home-facultad-de-%s", e.id),
		Email: fmt.Sprintf("%s@ucasal.edu.ar", e.id),
	}
	return meta
}
