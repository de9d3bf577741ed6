// Package dates parses the day/month/year strings found in the source
// spreadsheets and decides whether a date falls inside a source's validity
// window.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/exam-schedule-api/internal/models"
)

var weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Parse interprets a "d/m/y" string as a calendar date at local midnight.
func Parse(raw string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q: expected d/m/y", raw)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: segment %q is not numeric", raw, part)
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q: out of range", raw)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// Format renders every representation of a date string. It never fails: on
// malformed input ISO stays empty and the legible form echoes the original.
func Format(raw string) models.DateInfo {
	parsed, err := Parse(raw)
	if err != nil {
		return models.DateInfo{Original: raw, Legible: raw}
	}

	return models.DateInfo{
		Original:  raw,
		ISO:       parsed.Format("2006-01-02"),
		Legible:   legible(parsed),
		Timestamp: parsed.UnixMilli(),
	}
}

// Threshold computes the inclusive lower bound of the validity window for a
// filter mode, anchored at the local midnight of now.
func Threshold(mode models.DateFilterMode, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	switch mode {
	case models.FilterFromYesterday:
		return today.AddDate(0, 0, -1)
	case models.FilterFromLastWeek:
		return today.AddDate(0, 0, -7)
	default:
		return today
	}
}

// InWindow reports whether the date string parses and is on or after the
// window threshold. Malformed dates are never in the window.
func InWindow(raw string, mode models.DateFilterMode, now time.Time) bool {
	parsed, err := Parse(raw)
	if err != nil {
		return false
	}
	return !parsed.Before(Threshold(mode, now))
}

func legible(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		weekdays[int(t.Weekday())], t.Day(), months[int(t.Month())-1], t.Year())
}
