package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Date is a civil calendar date with no time of day and no zone. Two Dates
// holding the same day compare equal with ==.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New builds a Date, normalising overflowing components the way time.Date does.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime keeps the calendar components of t as observed in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Parse accepts an ISO-8601 calendar date ("2022-06-13") or an RFC 3339
// timestamp, in which case the date as written is kept.
func Parse(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return FromTime(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: invalid date %q", value)
	}
	return FromTime(t), nil
}

// MustParse is Parse for literals and fixtures; it panics on malformed input.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Year returns the year component.
func (d Date) Year() int { return d.year }

// Month returns the month component.
func (d Date) Month() time.Month { return d.month }

// Day returns the day of month.
func (d Date) Day() int { return d.day }

// Time returns midnight UTC on d. UTC has no daylight-saving transitions, so
// day arithmetic on the result is exact.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(time.DateOnly)
}

// MarshalJSON encodes d as an ISO-8601 date string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO-8601 date or RFC 3339 timestamp.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("calendar: date must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed number of calendar days from start to end.
func DaysBetween(start, end Date) int {
	return int(end.Time().Sub(start.Time()).Hours() / 24)
}

// Span returns the inclusive number of calendar days in [start, end]; zero
// when end precedes start.
func Span(start, end Date) int {
	n := DaysBetween(start, end)
	if n < 0 {
		return 0
	}
	return n + 1
}

// Each lists every date of the closed interval [from, to] in ascending order.
func Each(from, to Date) []Date {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: from.Time(),
		Until:   to.Time(),
	})
	if err != nil {
		panic(fmt.Sprintf("calendar: daily rule from %s to %s: %v", from, to, err))
	}
	occurrences := rule.All()
	days := make([]Date, 0, len(occurrences))
	for _, occurrence := range occurrences {
		days = append(days, FromTime(occurrence))
	}
	return days
}

// WeekStart returns the Monday of d's week.
func WeekStart(d Date) Date {
	return d.AddDays(-WeekdayOf(d).Index())
}

// ISOWeek returns the ISO 8601 year and week number of d.
func ISOWeek(d Date) (year, week int) {
	return d.Time().ISOWeek()
}

// YearsBetween returns the number of whole years elapsed from birth to at.
func YearsBetween(birth, at Date) int {
	years := at.year - birth.year
	if at.month < birth.month || (at.month == birth.month && at.day < birth.day) {
		years--
	}
	return years
}
