package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/models"
)

func stdColumns() models.ColumnMap {
	cols := models.UnresolvedColumnMap()
	cols.Name = 1
	cols.Date = 2
	cols.Time = 3
	return cols
}

func TestNormalizeBuildsRecord(t *testing.T) {
	row := []string{"101", "Contratos", "31/12/2099", "10:00"}

	rec, reason := Normalize(row, stdColumns(), "101", 0)

	require.Equal(t, models.RejectNone, reason)
	require.NotNil(t, rec)
	assert.Equal(t, "101-0-Contratos", rec.ID)
	assert.Equal(t, "Contratos", rec.SubjectName)
	assert.Equal(t, "2099-12-31", rec.Date.ISO)
	assert.Equal(t, "10:00", rec.Time)
}

func TestNormalizeIDUsesSheetTitle(t *testing.T) {
	row := []string{"101", "Contratos", "31/12/2099", "10:00"}

	recA, reasonA := Normalize(row, stdColumns(), "101_Derecho Plan A", 1)
	recB, reasonB := Normalize(row, stdColumns(), "101_Derecho Plan B", 1)

	require.Equal(t, models.RejectNone, reasonA)
	require.Equal(t, models.RejectNone, reasonB)
	assert.Equal(t, "101_Derecho Plan A-1-Contratos", recA.ID)
	assert.Equal(t, "101_Derecho Plan B-1-Contratos", recB.ID)
	assert.NotEqual(t, recA.ID, recB.ID)
}

func TestNormalizeIDTruncatesLongNames(t *testing.T) {
	row := []string{"101", "Derecho Procesal Penal", "31/12/2099"}

	rec, reason := Normalize(row, stdColumns(), "101", 7)

	require.Equal(t, models.RejectNone, reason)
	assert.Equal(t, "101-7-Derecho Pr", rec.ID)
}

func TestNormalizeDefaultsMissingTime(t *testing.T) {
	row := []string{"101", "Contratos", "31/12/2099"}

	rec, reason := Normalize(row, stdColumns(), "101", 0)

	require.Equal(t, models.RejectNone, reason)
	assert.Equal(t, models.TimeUnspecified, rec.Time)
}

func TestNormalizeSecondaryScanFillsFields(t *testing.T) {
	cols := models.UnresolvedColumnMap()
	cols.Name = 0
	cols.Date = 1

	row := []string{"Contratos", "31/12/2099", "14:30", "Escrito", "Proctoring v2"}

	rec, reason := Normalize(row, cols, "101", 3)

	require.Equal(t, models.RejectNone, reason)
	assert.Equal(t, "14:30", rec.Time)
	assert.Equal(t, "Escrito", rec.ExamType)
	assert.Equal(t, "Proctoring v2", rec.Monitoring)
}

func TestNormalizeRejections(t *testing.T) {
	cols := stdColumns()

	cases := []struct {
		name   string
		row    []string
		reason models.RejectionReason
	}{
		{"empty row", nil, models.RejectEmptyRow},
		{"blank cells", []string{"", "  ", ""}, models.RejectNoContent},
		{"error markers only", []string{"#REF!", "#REF!", "#REF!"}, models.RejectNoContent},
		{"missing name", []string{"101", "", "31/12/2099"}, models.RejectInvalidName},
		{"short name", []string{"101", "ab", "31/12/2099"}, models.RejectInvalidName},
		{"numeric name", []string{"101", "12345", "31/12/2099"}, models.RejectInvalidName},
		{"single letter name", []string{"101", "A", "31/12/2099"}, models.RejectInvalidName},
		{"header word name", []string{"101", "MATERIA", "31/12/2099"}, models.RejectInvalidName},
		{"name without letters", []string{"101", "12-34", "31/12/2099"}, models.RejectInvalidName},
		{"error marker name", []string{"101", "#N/A", "31/12/2099"}, models.RejectInvalidName},
		{"missing date", []string{"101", "Contratos", ""}, models.RejectInvalidDate},
		{"short date", []string{"101", "Contratos", "1/2"}, models.RejectInvalidDate},
		{"header word date", []string{"101", "Contratos", "FECHA"}, models.RejectInvalidDate},
		{"error marker date", []string{"101", "Contratos", "#REF!"}, models.RejectInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, reason := Normalize(tc.row, cols, "101", 0)
			assert.Nil(t, rec)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestNormalizeAccentedNamesAccepted(t *testing.T) {
	row := []string{"101", "Economía Política", "15/6/2099"}

	rec, reason := Normalize(row, stdColumns(), "101", 1)

	require.Equal(t, models.RejectNone, reason)
	assert.Equal(t, "Economía Política", rec.SubjectName)
}

func TestIsErrorMarkerCoversAllSeven(t *testing.T) {
	for _, marker := range []string{"#REF!", "#N/A", "#ERROR!", "#VALUE!", "#DIV/0!", "#NAME?", "#NULL!"} {
		assert.True(t, IsErrorMarker(marker), marker)
	}
	assert.False(t, IsErrorMarker("Contratos"))
}
