package events

import (
	"encoding/json"
	"sort"
)

// Matchday bounds of a Bundesliga season, used when no range is given.
const (
	FirstMatchday = 1
	LastMatchday  = 34
)

// DaySummary holds the raw per-day documents of one player keyed by day number.
type DaySummary struct {
	Days map[int]json.RawMessage
}

// NewDaySummary wraps days, which may be nil.
func NewDaySummary(days map[int]json.RawMessage) DaySummary {
	if days == nil {
		days = make(map[int]json.RawMessage)
	}
	return DaySummary{Days: days}
}

// MergeDay stores doc under day, replacing any previous document wholesale.
func (s *DaySummary) MergeDay(day int, doc json.RawMessage) {
	if s.Days == nil {
		s.Days = make(map[int]json.RawMessage)
	}
	s.Days[day] = doc
}

// DayNumbers lists stored days ascending.
func (s DaySummary) DayNumbers() []int {
	out := make([]int, 0, len(s.Days))
	for day := range s.Days {
		out = append(out, day)
	}
	sort.Ints(out)
	return out
}

// InRange lists stored days within [start, end] ascending.
func (s DaySummary) InRange(start, end int) []int {
	var out []int
	for _, day := range s.DayNumbers() {
		if day >= start && day <= end {
			out = append(out, day)
		}
	}
	return out
}
