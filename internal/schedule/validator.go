package schedule

import (
	"fmt"
	"sort"

	"github.com/immersion-facile/convention-core/internal/calendar"
)

// MaxWeeklyMinutes is the generic weekly ceiling: 35 hours.
const MaxWeeklyMinutes = 35 * MinutesPerHour

// EmptyScheduleReason is reported when no period carries any time.
const EmptyScheduleReason = "Veuillez remplir les horaires."

// Overlaps reports whether two periods share time. Touching periods
// ("09:00-10:00" and "10:00-11:00") do not overlap; malformed periods never do.
func Overlaps(a, b TimePeriod) bool {
	aStart, aEnd, err := a.bounds()
	if err != nil {
		return false
	}
	bStart, bEnd, err := b.bounds()
	if err != nil {
		return false
	}
	if aStart <= bStart {
		return bStart < aEnd
	}
	return aStart < bEnd
}

// Validate returns the first reason cs is unusable, or "" when it is valid.
// Periods are checked day by day (malformed, then non-positive, then
// overlapping), then the weekly ceiling, then that some time is recorded.
func Validate(cs ComplexSchedule) string {
	reasons := ValidateAll(cs, MaxWeeklyMinutes)
	if len(reasons) == 0 {
		return ""
	}
	return reasons[0]
}

// ValidateAll runs every check and returns the reasons in check order. The
// day checks stop at the first failing day so messages stay readable; every
// week over weeklyCeiling is reported, and the emptiness check always runs.
func ValidateAll(cs ComplexSchedule, weeklyCeiling int) []string {
	ordered := cs.Sorted()
	var reasons []string

	for _, day := range ordered {
		if reason := checkDay(day); reason != "" {
			reasons = append(reasons, reason)
			break
		}
	}

	reasons = append(reasons, CheckWeeklyCeiling(ordered, weeklyCeiling)...)

	if TotalMinutes(ordered) == 0 {
		reasons = append(reasons, EmptyScheduleReason)
	}
	return reasons
}

// CheckWeeklyCeiling reports every week whose total exceeds ceiling minutes.
// Weeks are numbered from 1 in schedule order.
func CheckWeeklyCeiling(cs ComplexSchedule, ceiling int) []string {
	var reasons []string
	for i, week := range WeeklyTotals(cs) {
		if week.Minutes > ceiling {
			reasons = append(reasons, fmt.Sprintf(
				"Veuillez saisir moins de %sh pour la semaine %d (du %s) : %sh saisies.",
				formatHours(ceiling), i+1, week.Start, formatHours(week.Minutes),
			))
		}
	}
	return reasons
}

// WeeksOverCeiling returns the 1-based numbers of the weeks above ceiling.
func WeeksOverCeiling(cs ComplexSchedule, ceiling int) []int {
	var weeks []int
	for i, week := range WeeklyTotals(cs) {
		if week.Minutes > ceiling {
			weeks = append(weeks, i+1)
		}
	}
	return weeks
}

func checkDay(day DailySchedule) string {
	label := dayLabel(day.Date)

	for i, period := range day.TimePeriods {
		start, end, err := period.bounds()
		if err != nil {
			return fmt.Sprintf("Le créneau %d du %s a un horaire invalide (%s - %s).", i+1, label, period.Start, period.End)
		}
		if end <= start {
			return fmt.Sprintf("Le créneau %d du %s doit finir après son début (%s - %s).", i+1, label, period.Start, period.End)
		}
	}

	type indexed struct {
		position   int
		start, end int
	}
	periods := make([]indexed, 0, len(day.TimePeriods))
	for i, period := range day.TimePeriods {
		start, end, _ := period.bounds()
		periods = append(periods, indexed{position: i, start: start, end: end})
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].start < periods[j].start
	})
	for i := 1; i < len(periods); i++ {
		previous, current := periods[i-1], periods[i]
		if current.start < previous.end {
			first, second := previous.position, current.position
			if first > second {
				first, second = second, first
			}
			return fmt.Sprintf("Les créneaux %d et %d du %s se chevauchent.", first+1, second+1, label)
		}
	}
	return ""
}

func dayLabel(date calendar.Date) string {
	return fmt.Sprintf("%s %s", calendar.WeekdayOf(date), date)
}

func formatHours(minutes int) string {
	return hoursDecimal(minutes).String()
}
