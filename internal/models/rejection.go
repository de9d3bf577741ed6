package models

// RejectionReason classifies why a raw row did not yield an ExamRecord.
// Rejections are expected and high-frequency; they are counted, never
// surfaced as pipeline errors.
type RejectionReason string

const (
	RejectNone        RejectionReason = ""
	RejectEmptyRow    RejectionReason = "empty_row"
	RejectNoContent   RejectionReason = "no_real_content"
	RejectInvalidName RejectionReason = "invalid_name"
	RejectInvalidDate RejectionReason = "invalid_date"
	RejectDateWindow  RejectionReason = "outside_date_window"
)

// RejectionCounts tallies rejections per reason for one pipeline run.
type RejectionCounts map[RejectionReason]int

// Add increments the count for a reason, ignoring RejectNone.
func (c RejectionCounts) Add(reason RejectionReason) {
	if reason == RejectNone {
		return
	}
	c[reason]++
}

// Total sums every rejection.
func (c RejectionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
