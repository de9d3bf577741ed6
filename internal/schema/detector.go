// Package schema locates the header row of a raw sheet and maps semantic
// field roles to column positions. The keyword tables are heuristics tuned to
// the layouts the academic units actually publish; downstream code must
// tolerate unresolved roles.
package schema

import (
	"regexp"
	"strings"

	"github.com/noah-isme/exam-schedule-api/internal/models"
)

// headerScanLimit caps how many leading rows are inspected for the header:
// sheets often start with banner rows.
const headerScanLimit = 10

// defaultHeaderRow is assumed when no keyword row is found.
const defaultHeaderRow = 1

var headerKeywords = []string{"CARRERA", "MATERIA", "FECHA", "HORA"}

type role int

const (
	roleName role = iota
	roleDate
	roleTime
	roleExamType
	roleMonitoring
	roleMaterial
	roleNotes
)

// columnRules is the ordered rule table for role resolution. For each header
// cell the first matching rule wins; a column already claimed keeps its role.
var columnRules = []struct {
	role     role
	keywords []string
}{
	{roleName, []string{"MATERIA", "ASIGNATURA", "NOMBRE CORTO", "NOMBRE"}},
	{roleDate, []string{"FECHA", "DIA", "DATE"}},
	{roleTime, []string{"HORA", "HORARIO", "TIME"}},
	{roleExamType, []string{"TIPO", "EXAMEN", "MODALIDAD"}},
	{roleMonitoring, []string{"MONITOREO", "PROCTORING", "CONTROL"}},
	{roleMaterial, []string{"MATERIAL", "PERMITIDO", "CALCULADORA"}},
	{roleNotes, []string{"OBSERVACION", "COMENTARIO", "NOTA"}},
}

// Detection is the outcome of scanning a sheet.
type Detection struct {
	HeaderRow int
	Columns   models.ColumnMap
}

// Detect finds the header row and resolves the column map for a raw sheet.
func Detect(rows [][]string) Detection {
	headerRow := -1
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		joined := strings.ToUpper(strings.Join(rows[i], " "))
		for _, kw := range headerKeywords {
			if strings.Contains(joined, kw) {
				headerRow = i
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}

	var header []string
	if headerRow < 0 {
		headerRow = defaultHeaderRow
		if headerRow < len(rows) {
			header = rows[headerRow]
		}
	} else {
		header = rows[headerRow]
	}

	return Detection{HeaderRow: headerRow, Columns: resolveColumns(header)}
}

func resolveColumns(header []string) models.ColumnMap {
	cols := models.UnresolvedColumnMap()

	for i, cell := range header {
		normalized := strings.ToUpper(strings.TrimSpace(cell))
		if normalized == "" {
			continue
		}
		if cols.Claimed(i) {
			continue
		}
		for _, rule := range columnRules {
			if *slot(&cols, rule.role) >= 0 {
				continue
			}
			if matchesAny(normalized, rule.keywords) {
				*slot(&cols, rule.role) = i
				break
			}
		}
	}

	// Positional fallbacks for the two mandatory roles.
	if cols.Name < 0 {
		cols.Name = 1
	}
	if cols.Date < 0 {
		for i := cols.Name + 1; i <= cols.Name+3; i++ {
			if !cols.Claimed(i) {
				cols.Date = i
				break
			}
		}
	}

	return cols
}

func matchesAny(cell string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(cell, kw) {
			return true
		}
	}
	return false
}

func slot(m *models.ColumnMap, r role) *int {
	switch r {
	case roleName:
		return &m.Name
	case roleDate:
		return &m.Date
	case roleTime:
		return &m.Time
	case roleExamType:
		return &m.ExamType
	case roleMonitoring:
		return &m.Monitoring
	case roleMaterial:
		return &m.Material
	default:
		return &m.Notes
	}
}

var (
	timePattern     = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	examTypePattern = regexp.MustCompile(`(?i)oral|escrito|virtual|presencial`)
	monitorPattern  = regexp.MustCompile(`(?i)proctoring|monitoreo`)
	materialPattern = regexp.MustCompile(`(?i)permitido|calculadora|material`)
	allDashPattern  = regexp.MustCompile(`^-{3,}$`)
	numericPattern  = regexp.MustCompile(`^[0-9]+$`)
	letterPattern   = regexp.MustCompile(`^[A-Z]$`)
)

// Fields holds the mutable field set a secondary scan can complete.
type Fields struct {
	Time       string
	ExamType   string
	Monitoring string
	Material   string
	Notes      string
}

// ScanUnclaimed runs the content-shape heuristics over every cell the column
// map did not claim, filling fields that stayed empty after the primary
// mapping. Notes are appended, never overwritten.
func ScanUnclaimed(row []string, cols models.ColumnMap, fields *Fields) {
	for j, raw := range row {
		value := strings.TrimSpace(raw)
		if value == "" || strings.Contains(value, "#") {
			continue
		}
		if cols.Claimed(j) {
			continue
		}

		switch {
		case fields.Time == "" && timePattern.MatchString(value):
			fields.Time = value
		case fields.ExamType == "" && examTypePattern.MatchString(value):
			fields.ExamType = value
		case fields.Monitoring == "" && (monitorPattern.MatchString(value) || allDashPattern.MatchString(value)):
			fields.Monitoring = value
		case fields.Material == "" && materialPattern.MatchString(value):
			fields.Material = value
		case len(value) > 1 && !numericPattern.MatchString(value) && !letterPattern.MatchString(value):
			if fields.Notes != "" {
				fields.Notes += " | " + value
			} else {
				fields.Notes = value
			}
		}
	}
}
