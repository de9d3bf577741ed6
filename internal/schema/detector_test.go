package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/exam-schedule-api/internal/models"
)

func TestDetectFindsKeywordHeader(t *testing.T) {
	rows := [][]string{
		{"Cronograma de exámenes"},
		{},
		{"CARRERA", "MATERIA", "FECHA", "Hora"},
		{"101", "Contratos", "31/12/2099", "10:00"},
	}

	det := Detect(rows)

	assert.Equal(t, 2, det.HeaderRow)
	assert.Equal(t, 1, det.Columns.Name)
	assert.Equal(t, 2, det.Columns.Date)
	assert.Equal(t, 3, det.Columns.Time)
}

func TestDetectDefaultsToSecondRow(t *testing.T) {
	rows := [][]string{
		{"banner"},
		{"uno", "dos", "tres"},
		{"101", "Contratos", "31/12/2099"},
	}

	det := Detect(rows)

	assert.Equal(t, 1, det.HeaderRow)
	// No keywords matched: name falls back to column 1, date to the first
	// unclaimed column after it.
	assert.Equal(t, 1, det.Columns.Name)
	assert.Equal(t, 2, det.Columns.Date)
	assert.Equal(t, -1, det.Columns.Time)
}

func TestDetectScansAtMostTenRows(t *testing.T) {
	rows := make([][]string, 12)
	for i := range rows {
		rows[i] = []string{"relleno"}
	}
	rows[11] = []string{"CARRERA", "MATERIA", "FECHA"}

	det := Detect(rows)

	assert.Equal(t, 1, det.HeaderRow)
}

func TestResolveColumnsNombreCortoLayout(t *testing.T) {
	// The architecture faculty layout: monitoring sits between name and date.
	header := []string{"CARRERA", "NOMBRE CORTO", "Monitoreo", "FECHA", "Hora", "Tipo Examen", "Material Permitido", "Observaciones"}

	cols := resolveColumns(header)

	assert.Equal(t, 1, cols.Name)
	assert.Equal(t, 2, cols.Monitoring)
	assert.Equal(t, 3, cols.Date)
	assert.Equal(t, 4, cols.Time)
	assert.Equal(t, 5, cols.ExamType)
	assert.Equal(t, 6, cols.Material)
	assert.Equal(t, 7, cols.Notes)
}

func TestResolveColumnsFirstMatchWinsPerColumn(t *testing.T) {
	// "MATERIA" appears twice: only the first occurrence claims the name role,
	// the second column stays free for the date fallback.
	header := []string{"MATERIA", "MATERIA"}

	cols := resolveColumns(header)

	assert.Equal(t, 0, cols.Name)
	assert.Equal(t, 1, cols.Date)
}

func TestScanUnclaimedShapes(t *testing.T) {
	cols := models.UnresolvedColumnMap()
	cols.Name = 0
	cols.Date = 1

	fields := Fields{}
	row := []string{"Contratos", "31/12/2099", "10:30", "Oral", "---", "Calculadora permitida", "traer DNI"}

	ScanUnclaimed(row, cols, &fields)

	assert.Equal(t, "10:30", fields.Time)
	assert.Equal(t, "Oral", fields.ExamType)
	assert.Equal(t, "---", fields.Monitoring)
	assert.Equal(t, "Calculadora permitida", fields.Material)
	assert.Equal(t, "traer DNI", fields.Notes)
}

func TestScanUnclaimedAppendsNotes(t *testing.T) {
	cols := models.UnresolvedColumnMap()
	cols.Name = 0
	cols.Date = 1

	fields := Fields{Time: "08:00", ExamType: "Escrito", Monitoring: "x", Material: "x"}
	row := []string{"Contratos", "31/12/2099", "llevar carnet", "aula por confirmar"}

	ScanUnclaimed(row, cols, &fields)

	assert.Equal(t, "llevar carnet | aula por confirmar", fields.Notes)
}

func TestScanUnclaimedSkipsErrorCells(t *testing.T) {
	cols := models.UnresolvedColumnMap()
	fields := Fields{}

	ScanUnclaimed([]string{"#REF!", "", "7"}, cols, &fields)

	assert.Empty(t, fields.Time)
	assert.Empty(t, fields.Notes)
}
