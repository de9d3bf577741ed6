package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/models"
)

func TestFormatRoundTrip(t *testing.T) {
	info := Format("15/6/2025")

	assert.Equal(t, "15/6/2025", info.Original)
	assert.Equal(t, "2025-06-15", info.ISO)
	assert.Equal(t, "domingo, 15 de junio de 2025", info.Legible)
	assert.NotZero(t, info.Timestamp)
}

func TestFormatMalformedNeverFails(t *testing.T) {
	for _, raw := range []string{"invalid", "15/6", "a/b/c", "", "31/2/x"} {
		info := Format(raw)
		assert.Empty(t, info.ISO, "raw=%q", raw)
		assert.Equal(t, raw, info.Legible, "raw=%q", raw)
		assert.Zero(t, info.Timestamp, "raw=%q", raw)
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	_, err := Parse("32/1/2025")
	require.Error(t, err)

	_, err = Parse("1/13/2025")
	require.Error(t, err)
}

func TestThresholdPerMode(t *testing.T) {
	now := time.Date(2025, 6, 15, 17, 30, 0, 0, time.Local)
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	assert.Equal(t, today, Threshold(models.FilterFromToday, now))
	assert.Equal(t, today.AddDate(0, 0, -1), Threshold(models.FilterFromYesterday, now))
	assert.Equal(t, today.AddDate(0, 0, -7), Threshold(models.FilterFromLastWeek, now))
}

func TestInWindowInclusiveThreshold(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	// Exactly at the threshold counts for every mode.
	assert.True(t, InWindow("15/6/2025", models.FilterFromToday, now))
	assert.True(t, InWindow("14/6/2025", models.FilterFromYesterday, now))
	assert.True(t, InWindow("8/6/2025", models.FilterFromLastWeek, now))

	// One day earlier falls out.
	assert.False(t, InWindow("14/6/2025", models.FilterFromToday, now))
	assert.False(t, InWindow("13/6/2025", models.FilterFromYesterday, now))
	assert.False(t, InWindow("7/6/2025", models.FilterFromLastWeek, now))

	// Far future always passes; past never does.
	assert.True(t, InWindow("31/12/2099", models.FilterFromToday, now))
	assert.False(t, InWindow("01/01/2000", models.FilterFromToday, now))
	assert.False(t, InWindow("garbage", models.FilterFromToday, now))
}
