// Package normalize turns raw sheet rows into exam records, rejecting rows
// that carry no usable data. Rejections are silent and per-reason counted;
// a bad row never aborts the rest of the sheet.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/exam-schedule-api/internal/dates"
	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/schema"
)

const (
	minNameLength = 3
	minDateLength = 4
	idNameLength  = 10
)

// errorMarkers are the spreadsheet formula failure literals a cell can hold.
var errorMarkers = map[string]struct{}{
	"#REF!":   {},
	"#N/A":    {},
	"#ERROR!": {},
	"#VALUE!": {},
	"#DIV/0!": {},
	"#NAME?":  {},
	"#NULL!":  {},
}

var (
	numericOnly  = regexp.MustCompile(`^[0-9]+$`)
	singleLetter = regexp.MustCompile(`^[A-Za-z]$`)
)

// IsErrorMarker reports whether the cell equals a spreadsheet error literal.
func IsErrorMarker(cell string) bool {
	_, ok := errorMarkers[strings.TrimSpace(cell)]
	return ok
}

// HasRealContent reports whether any cell of a row holds non-blank,
// non-error text.
func HasRealContent(row []string) bool {
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed != "" && !IsErrorMarker(trimmed) {
			return true
		}
	}
	return false
}

// ValidName applies the subject-name acceptance rules shared by the active
// pre-check and full normalization.
func ValidName(name string) bool {
	if utf8.RuneCountInString(name) < minNameLength {
		return false
	}
	if IsErrorMarker(name) || strings.Contains(name, "#") {
		return false
	}
	if numericOnly.MatchString(name) || singleLetter.MatchString(name) {
		return false
	}
	lower := strings.ToLower(name)
	if lower == "materia" || lower == "asignatura" {
		return false
	}
	return containsLetter(name)
}

// ValidDate applies the date-cell acceptance rules. Parseability is not
// required here; the date window filter decides that later.
func ValidDate(date string) bool {
	if utf8.RuneCountInString(date) < minDateLength {
		return false
	}
	if IsErrorMarker(date) || strings.Contains(date, "#") {
		return false
	}
	return strings.ToLower(date) != "fecha"
}

// Normalize builds an exam record from one raw data row, or reports why the
// row was rejected. Record IDs are keyed on the originating sheet title, so
// two sheets feeding the same program never mint colliding IDs.
func Normalize(row []string, cols models.ColumnMap, sheetTitle string, rowIndex int) (*models.ExamRecord, models.RejectionReason) {
	if len(row) == 0 {
		return nil, models.RejectEmptyRow
	}
	if !HasRealContent(row) {
		return nil, models.RejectNoContent
	}

	name := cell(row, cols.Name)
	date := cell(row, cols.Date)

	if !ValidName(name) {
		return nil, models.RejectInvalidName
	}
	if !ValidDate(date) {
		return nil, models.RejectInvalidDate
	}

	fields := schema.Fields{
		Time:       cell(row, cols.Time),
		ExamType:   cell(row, cols.ExamType),
		Monitoring: cell(row, cols.Monitoring),
		Material:   cell(row, cols.Material),
		Notes:      cell(row, cols.Notes),
	}
	if fields.Time == "" || fields.ExamType == "" || fields.Monitoring == "" || fields.Material == "" {
		schema.ScanUnclaimed(row, cols, &fields)
	}
	if fields.Time == "" {
		fields.Time = models.TimeUnspecified
	}

	return &models.ExamRecord{
		ID:          recordID(sheetTitle, rowIndex, name),
		SubjectName: name,
		Date:        dates.Format(date),
		Time:        fields.Time,
		ExamType:    fields.ExamType,
		Material:    fields.Material,
		Monitoring:  fields.Monitoring,
		Notes:       fields.Notes,
	}, models.RejectNone
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func recordID(sheetTitle string, rowIndex int, name string) string {
	truncated := name
	if runes := []rune(truncated); len(runes) > idNameLength {
		truncated = string(runes[:idNameLength])
	}
	return fmt.Sprintf("%s-%d-%s", sheetTitle, rowIndex, truncated)
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
