package schedule

import (
	"github.com/immersion-facile/convention-core/internal/calendar"
)

// LegacySchedule is the older import shape that stored both representations
// side by side and remembered which form tab was open. It is converted at the
// boundary and never stored.
type LegacySchedule struct {
	IsSimple        bool            `json:"isSimple"`
	SelectedIndex   int             `json:"selectedIndex"`
	ComplexSchedule ComplexSchedule `json:"complexSchedule"`
	SimpleSchedule  LegacyRegular   `json:"simpleSchedule"`
}

// LegacyRegular is the regular half of LegacySchedule, with hours instead
// of timePeriods.
type LegacyRegular struct {
	DayPeriods []DayPeriod  `json:"dayPeriods"`
	Hours      []TimePeriod `json:"hours"`
}

// FromLegacy converts the legacy shape into the canonical one. The simple
// half wins when the legacy record was in simple mode; SelectedIndex only
// drove the form and is dropped. Simple halves with unusable day periods fall
// back to the complex half.
func FromLegacy(legacy LegacySchedule, from, to calendar.Date) Schedule {
	_, usable := CheckDayPeriods(legacy.SimpleSchedule.DayPeriods)
	if legacy.IsSimple && usable {
		return FromRegular(RegularSchedule{
			DayPeriods:  legacy.SimpleSchedule.DayPeriods,
			TimePeriods: legacy.SimpleSchedule.Hours,
		}, from, to)
	}
	return NewSchedule(legacy.ComplexSchedule)
}

// ToLegacy renders the canonical schedule in the legacy shape for consumers
// that still read it.
func ToLegacy(s Schedule) LegacySchedule {
	legacy := LegacySchedule{
		IsSimple:        s.IsSimple,
		ComplexSchedule: s.ComplexSchedule.Clone(),
	}
	if regular, ok := ToRegular(s.ComplexSchedule); ok {
		legacy.SimpleSchedule = LegacyRegular{DayPeriods: regular.DayPeriods, Hours: regular.TimePeriods}
	}
	if !legacy.IsSimple {
		legacy.SelectedIndex = 1
	}
	return legacy
}
