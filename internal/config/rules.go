package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
)

// RulesFile is the YAML layout of the rule parameters. Every field is
// optional; missing values keep the defaults.
type RulesFile struct {
	// MaxCalendarDays maps an internship kind to its inclusive day cap.
	MaxCalendarDays map[string]int `yaml:"max_calendar_days"`
	// MinimumAge maps an internship kind to its age floor at dateStart.
	MinimumAge map[string]int `yaml:"minimum_age"`
	AdultAge   int            `yaml:"adult_age"`
	// Ceilings are expressed in hours per week.
	WeeklyCeilingHours        int `yaml:"weekly_ceiling_hours"`
	ReducedWeeklyCeilingHours int `yaml:"reduced_weekly_ceiling_hours"`
	ReducedCeilingBelowAge    int `yaml:"reduced_ceiling_below_age"`
	// RepresentativeRuleEffectiveDate is an ISO date, e.g. "2024-01-01".
	RepresentativeRuleEffectiveDate string `yaml:"representative_rule_effective_date"`
}

// LoadRules reads a YAML rules file and applies it on top of the defaults.
func LoadRules(path string) (convention.Rules, error) {
	if path == "" {
		return convention.Rules{}, errors.New("rules file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return convention.Rules{}, err
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rule parameters on top of the defaults.
func ParseRules(data []byte) (convention.Rules, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return convention.Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return file.Apply(convention.DefaultRules())
}

// Apply overlays the values present in f onto base.
func (f RulesFile) Apply(base convention.Rules) (convention.Rules, error) {
	if err := checkKinds("max_calendar_days", f.MaxCalendarDays); err != nil {
		return convention.Rules{}, err
	}
	if err := checkKinds("minimum_age", f.MinimumAge); err != nil {
		return convention.Rules{}, err
	}

	out := base
	out.MaxCalendarDays = overlayKinds(base.MaxCalendarDays, f.MaxCalendarDays)
	out.MinimumAge = overlayKinds(base.MinimumAge, f.MinimumAge)

	if f.AdultAge < 0 || f.WeeklyCeilingHours < 0 || f.ReducedWeeklyCeilingHours < 0 || f.ReducedCeilingBelowAge < 0 {
		return convention.Rules{}, errors.New("rule values must not be negative")
	}
	if f.AdultAge > 0 {
		out.AdultAge = f.AdultAge
	}
	if f.WeeklyCeilingHours > 0 {
		out.WeeklyCeilingMinutes = f.WeeklyCeilingHours * 60
	}
	if f.ReducedWeeklyCeilingHours > 0 {
		out.ReducedWeeklyCeilingMinutes = f.ReducedWeeklyCeilingHours * 60
	}
	if f.ReducedCeilingBelowAge > 0 {
		out.ReducedCeilingBelowAge = f.ReducedCeilingBelowAge
	}
	if f.RepresentativeRuleEffectiveDate != "" {
		date, err := calendar.Parse(f.RepresentativeRuleEffectiveDate)
		if err != nil {
			return convention.Rules{}, fmt.Errorf("representative_rule_effective_date: %w", err)
		}
		out.RepresentativeRuleEffectiveDate = date
	}
	return out, nil
}

func overlayKinds(base map[convention.InternshipKind]int, values map[string]int) map[convention.InternshipKind]int {
	out := make(map[convention.InternshipKind]int, len(base)+len(values))
	for kind, value := range base {
		out[kind] = value
	}
	for kind, value := range values {
		out[convention.InternshipKind(kind)] = value
	}
	return out
}

func checkKinds(field string, values map[string]int) error {
	for kind, value := range values {
		if !convention.InternshipKind(kind).Valid() {
			return fmt.Errorf("%s: unknown internship kind %q", field, kind)
		}
		if value <= 0 {
			return fmt.Errorf("%s.%s: must be positive", field, kind)
		}
	}
	return nil
}
