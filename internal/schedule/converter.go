package schedule

import (
	"fmt"
	"slices"

	"github.com/immersion-facile/convention-core/internal/calendar"
)

// Expand turns a regular schedule into one entry per date of [from, to].
// Dates whose French index is outside every day period get no periods.
// Day periods must be well formed (see CheckDayPeriods); malformed ranges
// are caller bugs and panic.
func Expand(regular RegularSchedule, from, to calendar.Date) ComplexSchedule {
	mustDayPeriods(regular.DayPeriods)

	dates := calendar.Each(from, to)
	out := make(ComplexSchedule, 0, len(dates))
	for _, date := range dates {
		periods := []TimePeriod{}
		if regular.covers(calendar.WeekdayOf(date).Index()) {
			periods = slices.Clone(regular.TimePeriods)
		}
		out = append(out, DailySchedule{Date: date, TimePeriods: periods})
	}
	return out
}

// FromRegular builds the canonical schedule for a regular schedule over
// [from, to].
func FromRegular(regular RegularSchedule, from, to calendar.Date) Schedule {
	s := NewSchedule(Expand(regular, from, to))
	s.IsSimple = true
	return s
}

func (r RegularSchedule) covers(index int) bool {
	for _, period := range r.DayPeriods {
		if period.Contains(index) {
			return true
		}
	}
	return false
}

// Compress recovers the day periods of a schedule. Each week contributes the
// maximal runs of consecutive worked French indexes; runs already emitted, or
// contained in a wider run emitted for another week (a week cut short by the
// convention's first or last date), are dropped. The result is sorted by
// first index.
func Compress(cs ComplexSchedule) []DayPeriod {
	ordered := cs.Sorted()

	var runs []DayPeriod
	seen := make(map[DayPeriod]struct{})
	for _, week := range splitWeeks(ordered) {
		for _, run := range weekRuns(week) {
			if _, ok := seen[run]; ok {
				continue
			}
			seen[run] = struct{}{}
			runs = append(runs, run)
		}
	}

	out := make([]DayPeriod, 0, len(runs))
	for _, run := range runs {
		if !containedInWider(run, runs) {
			out = append(out, run)
		}
	}
	slices.SortFunc(out, func(a, b DayPeriod) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return out
}

func splitWeeks(ordered ComplexSchedule) []ComplexSchedule {
	var weeks []ComplexSchedule
	var current calendar.Date
	for _, day := range ordered {
		start := calendar.WeekStart(day.Date)
		if len(weeks) == 0 || start != current {
			weeks = append(weeks, nil)
			current = start
		}
		weeks[len(weeks)-1] = append(weeks[len(weeks)-1], day)
	}
	return weeks
}

func weekRuns(week ComplexSchedule) []DayPeriod {
	var worked [calendar.DaysPerWeek]bool
	for _, day := range week {
		if day.Worked() {
			worked[calendar.WeekdayOf(day.Date).Index()] = true
		}
	}

	var runs []DayPeriod
	for i := 0; i < calendar.DaysPerWeek; i++ {
		if !worked[i] {
			continue
		}
		j := i
		for j+1 < calendar.DaysPerWeek && worked[j+1] {
			j++
		}
		runs = append(runs, DayPeriod{i, j})
		i = j
	}
	return runs
}

func containedInWider(run DayPeriod, all []DayPeriod) bool {
	for _, other := range all {
		if other == run {
			continue
		}
		if other[0] <= run[0] && run[1] <= other[1] {
			return true
		}
	}
	return false
}

// IsSimple reports whether cs can be written as a regular schedule: every
// worked day has the same periods, and every date between the first and last
// entry whose weekday is worked somewhere is worked too.
func IsSimple(cs ComplexSchedule) bool {
	_, ok := ToRegular(cs)
	return ok
}

// ToRegular recovers the regular form of a simple schedule for editing.
func ToRegular(cs ComplexSchedule) (RegularSchedule, bool) {
	ordered := cs.Sorted()

	var reference []TimePeriod
	found := false
	for _, day := range ordered {
		if !day.Worked() {
			continue
		}
		if !found {
			reference = day.TimePeriods
			found = true
			continue
		}
		if !slices.Equal(reference, day.TimePeriods) {
			return RegularSchedule{}, false
		}
	}
	if !found {
		return RegularSchedule{}, false
	}

	regular := RegularSchedule{
		DayPeriods:  Compress(ordered),
		TimePeriods: slices.Clone(reference),
	}

	first, last := ordered.Bounds()
	lookup := ordered.Lookup()
	for _, date := range calendar.Each(first, last) {
		expected := regular.covers(calendar.WeekdayOf(date).Index())
		if lookup[date].Worked() != expected {
			return RegularSchedule{}, false
		}
	}
	return regular, true
}

// CheckDayPeriods returns a readable reason when day periods are unusable:
// an index outside 0..6, a reversed range, or two ranges sharing a day.
func CheckDayPeriods(periods []DayPeriod) (string, bool) {
	var used [calendar.DaysPerWeek]bool
	for i, period := range periods {
		if period[0] < 0 || period[1] < 0 || period[0] >= calendar.DaysPerWeek || period[1] >= calendar.DaysPerWeek {
			return fmt.Sprintf("La plage de jours %d contient un jour inconnu.", i+1), false
		}
		if period[0] > period[1] {
			return fmt.Sprintf("La plage de jours %d commence après sa fin.", i+1), false
		}
		for index := period[0]; index <= period[1]; index++ {
			if used[index] {
				return fmt.Sprintf("Le %s apparaît dans plusieurs plages de jours.", calendar.WeekdayFromIndex(index)), false
			}
			used[index] = true
		}
	}
	return "", true
}

func mustDayPeriods(periods []DayPeriod) {
	if reason, ok := CheckDayPeriods(periods); !ok {
		panic("schedule: " + reason)
	}
}
