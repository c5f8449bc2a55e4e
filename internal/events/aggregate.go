package events

import (
	"encoding/json"
	"math"
	"sort"
)

// Aggregate maps category name to a signed total.
type Aggregate map[string]int

// Add folds other into a.
func (a Aggregate) Add(other Aggregate) {
	for name, v := range other {
		a[name] += v
	}
}

// CategoryTotal is one row of a sorted aggregate.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// Sorted orders categories by total descending, then by name.
func (a Aggregate) Sorted() []CategoryTotal {
	rows := make([]CategoryTotal, 0, len(a))
	for name, total := range a {
		rows = append(rows, CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

type rawEvent struct {
	Code   json.Number `json:"eti"`
	Points json.Number `json:"p"`
}

type dayDocument struct {
	Events []rawEvent `json:"events"`
}

type event struct {
	code   int
	points float64
}

// parseEvents extracts the events of one day document. Events without a
// usable code are dropped; a missing point value counts as zero.
func parseEvents(doc json.RawMessage) []event {
	var day dayDocument
	if err := json.Unmarshal(doc, &day); err != nil {
		return nil
	}
	out := make([]event, 0, len(day.Events))
	for _, raw := range day.Events {
		code, ok := numberToInt(raw.Code)
		if !ok {
			continue
		}
		points, _ := raw.Points.Float64()
		out = append(out, event{code: code, points: points})
	}
	return out
}

func numberToInt(n json.Number) (int, bool) {
	if n == "" {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return int(v), true
	}
	if f, err := n.Float64(); err == nil {
		return int(math.Round(f)), true
	}
	return 0, false
}

// pointSums holds unrounded per-category totals.
type pointSums map[string]float64

func (s pointSums) addDay(doc json.RawMessage, cats Categories) {
	for _, ev := range parseEvents(doc) {
		s[cats.Name(ev.code)] += ev.points
	}
}

// rounded converts the sums to an Aggregate, rounding each total once.
func (s pointSums) rounded() Aggregate {
	out := make(Aggregate, len(s))
	for name, v := range s {
		out[name] = int(math.Round(v))
	}
	return out
}

// AggregateDay sums point contributions per category for one day document.
func AggregateDay(doc json.RawMessage, cats Categories) Aggregate {
	sums := pointSums{}
	sums.addDay(doc, cats)
	return sums.rounded()
}

// CountDay counts events per category for one day document.
func CountDay(doc json.RawMessage, cats Categories) map[string]int {
	out := map[string]int{}
	for _, ev := range parseEvents(doc) {
		out[cats.Name(ev.code)]++
	}
	return out
}

// AggregateRange folds every stored day within [start, end]. Absent days are
// skipped; a range with no stored days yields an empty aggregate.
func AggregateRange(summary DaySummary, start, end int, cats Categories) Aggregate {
	sums := pointSums{}
	for _, day := range summary.InRange(start, end) {
		sums.addDay(summary.Days[day], cats)
	}
	return sums.rounded()
}

// AggregateByDay returns the per-day aggregates for stored days within [start, end].
func AggregateByDay(summary DaySummary, start, end int, cats Categories) map[int]Aggregate {
	out := make(map[int]Aggregate)
	for _, day := range summary.InRange(start, end) {
		out[day] = AggregateDay(summary.Days[day], cats)
	}
	return out
}
