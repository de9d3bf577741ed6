package models

// SheetInfo describes a single tab of an upstream document.
type SheetInfo struct {
	ID     int64  `json:"sheetId"`
	Title  string `json:"title"`
	Hidden bool   `json:"hidden"`
	Index  int64  `json:"index"`
}

// RawSheet is the raw cell grid of one tab. Rows are ragged: a row may carry
// fewer cells than the widest row of the sheet.
type RawSheet struct {
	Info SheetInfo  `json:"info"`
	Rows [][]string `json:"rows"`
}

// ColumnMap maps semantic field roles to zero-based column indices. An
// unresolved role holds -1 and yields an empty field downstream.
type ColumnMap struct {
	Name       int
	Date       int
	Time       int
	ExamType   int
	Monitoring int
	Material   int
	Notes      int
}

// UnresolvedColumnMap returns a map with every role unresolved.
func UnresolvedColumnMap() ColumnMap {
	return ColumnMap{Name: -1, Date: -1, Time: -1, ExamType: -1, Monitoring: -1, Material: -1, Notes: -1}
}

// Claimed reports whether the given column index is already bound to a role.
func (m ColumnMap) Claimed(idx int) bool {
	switch idx {
	case m.Name, m.Date, m.Time, m.ExamType, m.Monitoring, m.Material, m.Notes:
		return idx >= 0
	}
	return false
}
