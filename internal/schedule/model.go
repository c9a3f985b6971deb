// Package schedule models the working hours of a convention and converts
// between the compact regular form and the expanded per-date form.
package schedule

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/immersion-facile/convention-core/internal/calendar"
)

// TimePeriod is a wall-clock interval within a day, "HH:MM" on both ends.
type TimePeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DailySchedule lists the periods worked on one date. No periods means the
// day is not worked.
type DailySchedule struct {
	Date        calendar.Date `json:"date"`
	TimePeriods []TimePeriod  `json:"timePeriods"`
}

// Worked reports whether any period is recorded for the day.
func (d DailySchedule) Worked() bool {
	return len(d.TimePeriods) > 0
}

// ComplexSchedule is the expanded form: entries ordered by date, at most one
// per date. Unworked dates may be present with no periods or omitted.
type ComplexSchedule []DailySchedule

// DayPeriod is an inclusive range of French weekday indexes, stored low to high.
type DayPeriod [2]int

// From returns the first French index of the range.
func (p DayPeriod) From() int { return p[0] }

// To returns the last French index of the range.
func (p DayPeriod) To() int { return p[1] }

// Contains reports whether index falls inside the range.
func (p DayPeriod) Contains(index int) bool {
	return index >= p[0] && index <= p[1]
}

// RegularSchedule repeats the same periods on every day whose French index
// falls in one of DayPeriods.
type RegularSchedule struct {
	DayPeriods  []DayPeriod  `json:"dayPeriods"`
	TimePeriods []TimePeriod `json:"timePeriods"`
}

// Summary holds the totals derived from a ComplexSchedule.
type Summary struct {
	TotalHours float64 `json:"totalHours"`
	WorkedDays int     `json:"workedDays"`
	IsSimple   bool    `json:"isSimple"`
}

// Schedule is the canonical persisted shape: the expanded schedule and the
// summary derived from it.
type Schedule struct {
	Summary
	ComplexSchedule ComplexSchedule `json:"complexSchedule"`
}

// NewSchedule sorts a copy of cs by date and derives its summary.
func NewSchedule(cs ComplexSchedule) Schedule {
	ordered := cs.Sorted()
	return Schedule{
		Summary: Summary{
			TotalHours: TotalHours(ordered),
			WorkedDays: WorkedDays(ordered),
			IsSimple:   IsSimple(ordered),
		},
		ComplexSchedule: ordered,
	}
}

// Clone returns a deep copy.
func (cs ComplexSchedule) Clone() ComplexSchedule {
	if cs == nil {
		return nil
	}
	out := make(ComplexSchedule, len(cs))
	for i, day := range cs {
		out[i] = DailySchedule{Date: day.Date, TimePeriods: slices.Clone(day.TimePeriods)}
	}
	return out
}

// Sorted returns a deep copy ordered by ascending date.
func (cs ComplexSchedule) Sorted() ComplexSchedule {
	out := cs.Clone()
	slices.SortStableFunc(out, func(a, b DailySchedule) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Lookup indexes the schedule by date. Later duplicates win.
func (cs ComplexSchedule) Lookup() map[calendar.Date]DailySchedule {
	out := make(map[calendar.Date]DailySchedule, len(cs))
	for _, day := range cs {
		out[day.Date] = day
	}
	return out
}

// Bounds returns the first and last dates present, or zero dates when empty.
func (cs ComplexSchedule) Bounds() (calendar.Date, calendar.Date) {
	var first, last calendar.Date
	for _, day := range cs {
		if first.IsZero() || day.Date.Before(first) {
			first = day.Date
		}
		if last.IsZero() || day.Date.After(last) {
			last = day.Date
		}
	}
	return first, last
}

// parseClock converts "HH:MM" into minutes after midnight. "24:00" is
// accepted as the end of the day.
func parseClock(value string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hours) == 0 || len(hours) > 2 || len(minutes) != 2 {
		return 0, fmt.Errorf("schedule: invalid time %q", value)
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, fmt.Errorf("schedule: invalid time %q", value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, fmt.Errorf("schedule: invalid time %q", value)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("schedule: invalid time %q", value)
	}
	return h*60 + m, nil
}

// Minutes returns the period length; malformed or non-positive periods
// count as zero.
func (p TimePeriod) Minutes() int {
	start, err := parseClock(p.Start)
	if err != nil {
		return 0
	}
	end, err := parseClock(p.End)
	if err != nil {
		return 0
	}
	if end <= start {
		return 0
	}
	return end - start
}

func (p TimePeriod) bounds() (int, int, error) {
	start, err := parseClock(p.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(p.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
