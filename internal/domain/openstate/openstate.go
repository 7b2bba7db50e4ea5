// Package openstate tracks which calendar windows a viewer has already
// revealed. The record is advisory only: it changes the icon shown on the
// calendar and nothing else. Unlock policy and authorization never consult it.
package openstate

import (
	"encoding/json"
	"sort"
)

// OpenedDays is a per-viewer set of day numbers already revealed.
type OpenedDays struct {
	days map[int]bool
}

// New returns an empty opened-days record.
func New() *OpenedDays {
	return &OpenedDays{days: make(map[int]bool)}
}

// Decode parses the JSON-array wire form (e.g. "[1,5,12]"). Malformed input
// yields an empty record rather than an error: a corrupt record just means the
// viewer sees unopened icons again.
func Decode(raw string) *OpenedDays {
	o := New()
	if raw == "" {
		return o
	}
	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return New()
	}
	for _, d := range days {
		o.days[d] = true
	}
	return o
}

// MarkOpened records a day as revealed. Idempotent.
// POST: IsOpened(day) is true
func (o *OpenedDays) MarkOpened(day int) {
	o.days[day] = true
}

// IsOpened reports whether a day has been revealed by this viewer.
// INVARIANT: the record is not mutated
func (o *OpenedDays) IsOpened(day int) bool {
	return o.days[day]
}

// Encode returns the JSON-array wire form with days in ascending order.
func (o *OpenedDays) Encode() string {
	days := make([]int, 0, len(o.days))
	for d := range o.days {
		days = append(days, d)
	}
	sort.Ints(days)
	b, err := json.Marshal(days)
	if err != nil {
		return "[]"
	}
	return string(b)
}
