package schedule

import (
	"fmt"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/validation"
)

// Check verifies a decoded schedule: the stored totals must match what the
// complex schedule yields, entries must have a date and appear at most once,
// and the schedule itself must pass Validate. Paths are relative to the
// schedule object.
func (s Schedule) Check() validation.Issues {
	var issues validation.Issues

	seen := make(map[calendar.Date]struct{}, len(s.ComplexSchedule))
	for i, day := range s.ComplexSchedule {
		path := fmt.Sprintf("complexSchedule.%d.date", i)
		if day.Date.IsZero() {
			issues.Add(path, "La date est obligatoire.")
			continue
		}
		if _, ok := seen[day.Date]; ok {
			issues.Add(path, fmt.Sprintf("Le %s apparaît plusieurs fois.", day.Date))
			continue
		}
		seen[day.Date] = struct{}{}
	}

	if expected := TotalHours(s.ComplexSchedule); !sameHours(expected, s.TotalHours) {
		issues.Add("totalHours", fmt.Sprintf("Le total d'heures (%v) ne correspond pas aux horaires (%v).", s.TotalHours, expected))
	}
	if expected := WorkedDays(s.ComplexSchedule); expected != s.WorkedDays {
		issues.Add("workedDays", fmt.Sprintf("Le nombre de jours travaillés (%d) ne correspond pas aux horaires (%d).", s.WorkedDays, expected))
	}

	if reason := Validate(s.ComplexSchedule); reason != "" {
		issues.Add("complexSchedule", reason)
	}
	return issues
}

// Within reports the entries dated outside [from, to].
func (s Schedule) Within(from, to calendar.Date) validation.Issues {
	var issues validation.Issues
	for i, day := range s.ComplexSchedule {
		if day.Date.IsZero() {
			continue
		}
		if day.Date.Before(from) || day.Date.After(to) {
			issues.Add(fmt.Sprintf("complexSchedule.%d.date", i),
				fmt.Sprintf("Le %s est en dehors des dates de la convention.", day.Date))
		}
	}
	return issues
}
