package calendar

import (
	"fmt"
	"time"
)

// Weekday is a Monday-first day of the week: Lundi is 0 and Dimanche is 6.
type Weekday int

const (
	Lundi Weekday = iota
	Mardi
	Mercredi
	Jeudi
	Vendredi
	Samedi
	Dimanche
)

// DaysPerWeek is the number of French indexes.
const DaysPerWeek = 7

// Names holds the display vocabulary indexed by French index. Swapping this
// table is the only change needed to render another locale.
var Names = [DaysPerWeek]string{
	"lundi",
	"mardi",
	"mercredi",
	"jeudi",
	"vendredi",
	"samedi",
	"dimanche",
}

// WeekdayFromIndex returns the weekday for a French index. Indexes outside
// 0..6 are caller bugs and panic.
func WeekdayFromIndex(index int) Weekday {
	if index < 0 || index >= DaysPerWeek {
		panic(fmt.Sprintf("calendar: weekday index %d out of range", index))
	}
	return Weekday(index)
}

// ParseWeekday resolves a vocabulary name back to its weekday.
func ParseWeekday(name string) (Weekday, bool) {
	for i, candidate := range Names {
		if candidate == name {
			return Weekday(i), true
		}
	}
	return 0, false
}

// Index returns the French index.
func (w Weekday) Index() int {
	return int(w)
}

// Valid reports whether w is one of the seven weekdays.
func (w Weekday) Valid() bool {
	return w >= Lundi && w <= Dimanche
}

// String returns the vocabulary name.
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return Names[w]
}

// fromStd maps the platform's Sunday-first numbering onto the French index.
func fromStd(day time.Weekday) Weekday {
	return Weekday((int(day) + 6) % DaysPerWeek)
}

// Day pairs a French index with its display name.
type Day struct {
	Index int    `json:"frenchIndex"`
	Name  string `json:"frenchName"`
}

// DayOf classifies a calendar date. The result depends only on the date's
// year, month and day, never on a clock offset.
func DayOf(d Date) Day {
	w := WeekdayOf(d)
	return Day{Index: w.Index(), Name: w.String()}
}

// WeekdayOf returns the French weekday of d.
func WeekdayOf(d Date) Weekday {
	return fromStd(d.Time().Weekday())
}
