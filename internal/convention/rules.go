package convention

import (
	"fmt"
	"strings"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/schedule"
	"github.com/immersion-facile/convention-core/internal/validation"
)

// Rules holds the tunable parameters of the validity checks.
type Rules struct {
	// MaxCalendarDays caps the inclusive day span per internship kind.
	MaxCalendarDays map[InternshipKind]int
	// MinimumAge is the age floor at dateStart per internship kind.
	MinimumAge map[InternshipKind]int
	// AdultAge is the age from which no representative is needed.
	AdultAge int
	// WeeklyCeilingMinutes is the generic weekly ceiling.
	WeeklyCeilingMinutes int
	// ReducedWeeklyCeilingMinutes applies to mini-stage-cci conventions and
	// to beneficiaries younger than ReducedCeilingBelowAge.
	ReducedWeeklyCeilingMinutes int
	ReducedCeilingBelowAge      int
	// RepresentativeRuleEffectiveDate is the first submission date for which
	// minors need a representative.
	RepresentativeRuleEffectiveDate calendar.Date
}

// DefaultRules returns the production parameters.
func DefaultRules() Rules {
	return Rules{
		MaxCalendarDays: map[InternshipKind]int{
			KindImmersion:    30,
			KindMiniStageCCI: 5,
		},
		MinimumAge: map[InternshipKind]int{
			KindImmersion:    16,
			KindMiniStageCCI: 14,
		},
		AdultAge:                        18,
		WeeklyCeilingMinutes:            schedule.MaxWeeklyMinutes,
		ReducedWeeklyCeilingMinutes:     30 * schedule.MinutesPerHour,
		ReducedCeilingBelowAge:          16,
		RepresentativeRuleEffectiveDate: calendar.New(2024, 1, 1),
	}
}

const (
	pathDateStart          = "dateStart"
	pathDateEnd            = "dateEnd"
	pathDateSubmission     = "dateSubmission"
	pathInternshipKind     = "internshipKind"
	pathStatus             = "status"
	pathSchedule           = "schedule"
	pathComplexSchedule    = "schedule.complexSchedule"
	pathTutorEmail         = "establishmentTutor.email"
	pathBirthdate          = "signatories.beneficiary.birthdate"
	pathLevelOfEducation   = "signatories.beneficiary.levelOfEducation"
	pathRepresentative     = "signatories.beneficiaryRepresentative"
	pathEstablishmentSiret = "siret"
)

// Validate runs every validity rule and returns all failures; it never
// stops at the first one.
func Validate(c Convention, rules Rules) validation.Issues {
	var issues validation.Issues

	checkKind(c, &issues)
	checkDates(c, rules, &issues)
	checkIdentities(c, &issues)
	checkEmails(c, &issues)
	checkBeneficiary(c, rules, &issues)
	checkSchedule(c, rules, &issues)
	checkSignatureStatus(c, &issues)

	return issues
}

func checkKind(c Convention, issues *validation.Issues) {
	if !c.InternshipKind.Valid() {
		issues.Add(pathInternshipKind, fmt.Sprintf("Type de stage inconnu : %q.", c.InternshipKind))
	}
	if strings.TrimSpace(c.Siret) == "" {
		issues.Add(pathEstablishmentSiret, "Le SIRET de l'établissement est obligatoire.")
	}
}

func checkDates(c Convention, rules Rules, issues *validation.Issues) {
	if c.DateSubmission.IsZero() {
		issues.Add(pathDateSubmission, "La date de demande est obligatoire.")
	}
	if c.DateStart.IsZero() {
		issues.Add(pathDateStart, "La date de début est obligatoire.")
	}
	if c.DateEnd.IsZero() {
		issues.Add(pathDateEnd, "La date de fin est obligatoire.")
	}
	if c.DateStart.IsZero() || c.DateEnd.IsZero() {
		return
	}

	if c.DateEnd.Before(c.DateStart) {
		issues.Add(pathDateEnd, "La date de fin doit être après la date de début.")
		return
	}

	if limit, ok := rules.MaxCalendarDays[c.InternshipKind]; ok {
		if span := schedule.CalendarDaySpan(c.DateStart, c.DateEnd); span > limit {
			issues.Add(pathDateEnd, fmt.Sprintf(
				"La durée maximale calendaire d'une convention de type %s est de %d jours (%d jours saisis).",
				c.InternshipKind, limit, span))
		}
	}
}

func checkIdentities(c Convention, issues *validation.Issues) {
	for _, signatory := range c.Signatories.All() {
		person := signatory.Person()
		base := signatory.Role().Path()
		if strings.TrimSpace(person.FirstName) == "" {
			issues.Add(base+".firstName", "Le prénom est obligatoire.")
		}
		if strings.TrimSpace(person.LastName) == "" {
			issues.Add(base+".lastName", "Le nom est obligatoire.")
		}
		if strings.TrimSpace(person.Phone) == "" {
			issues.Add(base+".phone", "Le numéro de téléphone est obligatoire.")
		}
		if !looksLikeEmail(NormalizeEmail(person.Email)) {
			issues.Add(base+".email", "Veuillez saisir une adresse e-mail valide.")
		}
	}
	if !looksLikeEmail(NormalizeEmail(c.EstablishmentTutor.Email)) {
		issues.Add(pathTutorEmail, "Veuillez saisir une adresse e-mail valide.")
	}
}

func checkEmails(c Convention, issues *validation.Issues) {
	signatories := c.Signatories.All()
	for i := 0; i < len(signatories); i++ {
		for j := i + 1; j < len(signatories); j++ {
			a, b := signatories[i], signatories[j]
			if SameEmail(a.Person().Email, b.Person().Email) {
				issues.Add(b.Role().Path()+".email", fmt.Sprintf(
					"Les e-mails des signataires doivent être différents (%s et %s).", a.Role(), b.Role()))
			}
		}
	}

	for _, signatory := range signatories {
		if signatory.Role() == RoleEstablishmentRepresentative {
			continue
		}
		if SameEmail(c.EstablishmentTutor.Email, signatory.Person().Email) {
			issues.Add(pathTutorEmail, fmt.Sprintf(
				"L'e-mail du tuteur doit être différent de celui du signataire %s.", signatory.Role()))
		}
	}
}

func checkBeneficiary(c Convention, rules Rules, issues *validation.Issues) {
	beneficiary := c.Signatories.Beneficiary

	if c.InternshipKind == KindMiniStageCCI && strings.TrimSpace(beneficiary.LevelOfEducation) == "" {
		issues.Add(pathLevelOfEducation, "Le niveau d'étude est obligatoire pour un mini-stage.")
	}

	if beneficiary.Birthdate.IsZero() {
		issues.Add(pathBirthdate, "La date de naissance est obligatoire.")
		return
	}
	if c.DateStart.IsZero() {
		return
	}

	age := calendar.YearsBetween(beneficiary.Birthdate, c.DateStart)
	if minimum, ok := rules.MinimumAge[c.InternshipKind]; ok && age < minimum {
		issues.Add(pathBirthdate, fmt.Sprintf(
			"Le bénéficiaire doit avoir au moins %d ans au début d'une convention de type %s (%d ans).",
			minimum, c.InternshipKind, age))
	}

	requiresRepresentative := age < rules.AdultAge &&
		!c.DateSubmission.IsZero() &&
		!c.DateSubmission.Before(rules.RepresentativeRuleEffectiveDate)
	if requiresRepresentative && c.Signatories.BeneficiaryRepresentative == nil {
		issues.Add(pathRepresentative, "Un représentant légal est obligatoire pour un bénéficiaire mineur.")
	}
}

// reducedCeilingApplies reports whether the stricter weekly ceiling holds.
func reducedCeilingApplies(c Convention, rules Rules) bool {
	if c.InternshipKind == KindMiniStageCCI {
		return true
	}
	birth := c.Signatories.Beneficiary.Birthdate
	if birth.IsZero() || c.DateStart.IsZero() {
		return false
	}
	return calendar.YearsBetween(birth, c.DateStart) < rules.ReducedCeilingBelowAge
}

func checkSchedule(c Convention, rules Rules, issues *validation.Issues) {
	s := c.Schedule

	var nested validation.Issues
	for _, issue := range s.Check() {
		if issue.Path != "complexSchedule" {
			nested = append(nested, issue)
		}
	}
	issues.Merge(pathSchedule, nested)

	ceiling := rules.WeeklyCeilingMinutes
	if ceiling <= 0 {
		ceiling = schedule.MaxWeeklyMinutes
	}
	for _, reason := range schedule.ValidateAll(s.ComplexSchedule, ceiling) {
		issues.Add(pathComplexSchedule, reason)
	}

	if reducedCeilingApplies(c, rules) && rules.ReducedWeeklyCeilingMinutes > 0 && rules.ReducedWeeklyCeilingMinutes < ceiling {
		for _, reason := range schedule.CheckWeeklyCeiling(s.ComplexSchedule, rules.ReducedWeeklyCeilingMinutes) {
			issues.Add(pathComplexSchedule, reason)
		}
	}

	if !c.DateStart.IsZero() && !c.DateEnd.IsZero() {
		issues.Merge(pathSchedule, s.Within(c.DateStart, c.DateEnd))
	}
}

func checkSignatureStatus(c Convention, issues *validation.Issues) {
	if c.FullySigned() || c.Status.allowsMissingSignatures() {
		return
	}
	issues.Add(pathStatus, fmt.Sprintf(
		"Une convention au statut %s doit être signée par toutes les parties.", c.Status))
}
