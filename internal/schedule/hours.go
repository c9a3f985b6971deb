package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/immersion-facile/convention-core/internal/calendar"
)

// MinutesPerHour converts minute totals into hours.
const MinutesPerHour = 60

var sixty = decimal.NewFromInt(MinutesPerHour)

// MinutesInDay sums the periods of one day. Invalid periods contribute zero.
func MinutesInDay(day DailySchedule) int {
	total := 0
	for _, period := range day.TimePeriods {
		total += period.Minutes()
	}
	return total
}

// HoursFromMinutes converts minutes into hours rounded to two decimals.
func HoursFromMinutes(minutes int) float64 {
	hours, _ := hoursDecimal(minutes).Float64()
	return hours
}

func hoursDecimal(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

// WeekTotal is the minutes worked during one Monday-first week.
type WeekTotal struct {
	Start   calendar.Date
	Minutes int
}

// Hours returns the week's total in hours.
func (w WeekTotal) Hours() float64 {
	return HoursFromMinutes(w.Minutes)
}

// Label names the week in ISO 8601 form, such as 2022-W24.
func (w WeekTotal) Label() string {
	year, week := calendar.ISOWeek(w.Start)
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeeklyTotals groups entries into weeks in date order. A new week begins
// whenever the French index wraps from dimanche back to lundi, so only weeks
// that have at least one entry appear.
func WeeklyTotals(cs ComplexSchedule) []WeekTotal {
	ordered := cs.Sorted()
	var weeks []WeekTotal
	for _, day := range ordered {
		start := calendar.WeekStart(day.Date)
		if len(weeks) == 0 || weeks[len(weeks)-1].Start != start {
			weeks = append(weeks, WeekTotal{Start: start})
		}
		weeks[len(weeks)-1].Minutes += MinutesInDay(day)
	}
	return weeks
}

// WeeklyHours returns one hour total per week present, in order.
func WeeklyHours(cs ComplexSchedule) []float64 {
	weeks := WeeklyTotals(cs)
	out := make([]float64, len(weeks))
	for i, week := range weeks {
		out[i] = week.Hours()
	}
	return out
}

// WeekLabels returns the ISO label of every week present, in order.
func WeekLabels(cs ComplexSchedule) []string {
	weeks := WeeklyTotals(cs)
	out := make([]string, len(weeks))
	for i, week := range weeks {
		out[i] = week.Label()
	}
	return out
}

// TotalMinutes sums every entry.
func TotalMinutes(cs ComplexSchedule) int {
	total := 0
	for _, day := range cs {
		total += MinutesInDay(day)
	}
	return total
}

// TotalHours sums every entry and converts to hours.
func TotalHours(cs ComplexSchedule) float64 {
	return HoursFromMinutes(TotalMinutes(cs))
}

// TotalHoursBetween sums the entries whose date lies in [from, to].
func TotalHoursBetween(cs ComplexSchedule, from, to calendar.Date) float64 {
	lookup := cs.Lookup()
	total := 0
	for _, date := range calendar.Each(from, to) {
		if day, ok := lookup[date]; ok {
			total += MinutesInDay(day)
		}
	}
	return HoursFromMinutes(total)
}

// WorkedDays counts the entries that have at least one period.
func WorkedDays(cs ComplexSchedule) int {
	count := 0
	for _, day := range cs {
		if day.Worked() {
			count++
		}
	}
	return count
}

// CalendarDaySpan is the inclusive number of calendar days from start to end.
func CalendarDaySpan(start, end calendar.Date) int {
	return calendar.Span(start, end)
}

// ElapsedDays is end minus start in calendar days.
func ElapsedDays(start, end calendar.Date) int {
	return calendar.DaysBetween(start, end)
}

func sameHours(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
