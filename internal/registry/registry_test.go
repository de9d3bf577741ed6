package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

func TestResolveAppliesDefaults(t *testing.T) {
	r := New("test-key")

	cfg, err := r.Resolve("ingenieria")
	require.NoError(t, err)

	assert.Equal(t, "ingenieria", cfg.ID)
	assert.Equal(t, "FI", cfg.ShortName)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "_CONTENIDO_", cfg.ManifestSheet)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, models.FilterFromToday, cfg.DateFilter)
	assert.True(t, cfg.Enabled)
}

func TestResolveUnknownSource(t *testing.T) {
	r := New("test-key")

	_, err := r.Resolve("medicina")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSourceNotFound.Code, appErr.Code)
}

func TestResolveMissingCredential(t *testing.T) {
	r := New("")

	_, err := r.Resolve("turismo")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrCredentialMissing.Code, appErr.Code)
}

func TestAllReturnsStableOrder(t *testing.T) {
	r := New("test-key", WithDefaultTTL(10*time.Minute))

	configs := r.All()
	require.Len(t, configs, 7)

	for i := 1; i < len(configs); i++ {
		assert.Less(t, configs[i-1].ID, configs[i].ID)
	}
	for _, cfg := range configs {
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
		assert.NotEmpty(t, cfg.DocumentID)
	}
}

func TestCredentialNeverSerialised(t *testing.T) {
	r := New("secret")
	cfg, err := r.Resolve("educacion")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.APIKey)
	// The json tag on SourceConfig hides the key from API responses; the
	// registry is the only place it is readable.
	assert.NotContains(t, cfg.Metadata.Description, "secret")
}
