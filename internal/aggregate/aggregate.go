// Package aggregate groups normalized exam records by program and derives
// per-program summaries. Groups without a single qualifying record are never
// emitted.
package aggregate

import (
	"sort"
	"strings"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/normalize"
	"github.com/noah-isme/exam-schedule-api/internal/schema"
)

const nameNotFound = "Nombre no encontrado"

// defaultSortTime orders records without a time before timed ones on the
// same date.
const defaultSortTime = "00:00"

// SheetRecords pairs a sheet title with the records it yielded.
type SheetRecords struct {
	Title   string
	Records []models.ExamRecord
}

// Build assembles the program mapping from per-sheet record batches. Sheets
// whose title matches no manifest program are excluded; matched groups that
// end up without records are dropped, not emitted empty.
func Build(sheets []SheetRecords, manifest Manifest) map[string]models.ProgramGroup {
	groups := make(map[string]models.ProgramGroup)

	for _, sheet := range sheets {
		if len(sheet.Records) == 0 {
			continue
		}
		entry, ok := MatchProgram(sheet.Title, manifest.Programs)
		if !ok {
			continue
		}

		group, exists := groups[entry.Code]
		if !exists {
			name := entry.Name
			if name == "" {
				name = nameNotFound
			}
			group = models.ProgramGroup{Code: entry.Code, Name: name}
		}
		group.Exams = append(group.Exams, sheet.Records...)
		groups[entry.Code] = group
	}

	for code, group := range groups {
		sortRecords(group.Exams)
		group.Summary = summarize(group.Exams)
		groups[code] = group
	}

	return groups
}

func sortRecords(records []models.ExamRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].Date.ISO, records[j].Date.ISO
		if di != dj {
			return di < dj
		}
		return sortTime(records[i].Time) < sortTime(records[j].Time)
	})
}

func sortTime(t string) string {
	if t == "" || t == models.TimeUnspecified {
		return defaultSortTime
	}
	return t
}

func summarize(records []models.ExamRecord) models.ProgramSummary {
	dates := make(map[string]struct{})
	types := make(map[string]struct{})
	subjects := make(map[string]struct{})

	for _, rec := range records {
		if rec.Date.ISO != "" {
			dates[rec.Date.ISO] = struct{}{}
		}
		if rec.ExamType != "" {
			types[rec.ExamType] = struct{}{}
		}
		subjects[rec.SubjectName] = struct{}{}
	}

	return models.ProgramSummary{
		TotalExams: len(records),
		Dates:      sortedKeys(dates),
		ExamTypes:  sortedKeys(types),
		Subjects:   sortedKeys(subjects),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasRealContent is the cheap activity gate run before full normalization:
// at least one data row with non-trivial, non-error content and at least one
// row whose name and date cells pass the shared minimum checks. It is an
// optimization only; emitted groups always come from fully normalized rows.
func HasRealContent(rows [][]string, det schema.Detection) bool {
	if len(rows) <= det.HeaderRow+1 {
		return false
	}

	contentRows := 0
	validPairs := 0

	for _, row := range rows[det.HeaderRow+1:] {
		if len(row) == 0 || !normalize.HasRealContent(row) {
			continue
		}
		contentRows++

		name := cellAt(row, det.Columns.Name)
		date := cellAt(row, det.Columns.Date)
		if normalize.ValidName(name) && normalize.ValidDate(date) {
			validPairs++
		}
		if contentRows >= 1 && validPairs >= 1 {
			return true
		}
	}

	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
