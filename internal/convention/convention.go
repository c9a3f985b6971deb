// Package convention holds the immersion convention aggregate, the
// cross-field rules it must satisfy and the status machine that moves it
// from draft to validation.
package convention

import (
	"errors"
	"time"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/schedule"
)

var (
	// ErrUnknownRole is returned for a role tag that no signatory uses.
	ErrUnknownRole = errors.New("convention: unknown signatory role")
	// ErrMissingSignatory is returned when the role exists but the convention has no such signatory.
	ErrMissingSignatory = errors.New("convention: signatory not present on convention")
	// ErrAlreadySigned is returned alongside the unchanged convention when a role signs again.
	ErrAlreadySigned = errors.New("convention: signatory already signed")
	// ErrPayloadChanged is returned when the convention content differs from what was signed.
	ErrPayloadChanged = errors.New("convention: content changed since it was signed")
	// ErrTransitionNotAllowed is returned when the requested status cannot follow the current one.
	ErrTransitionNotAllowed = errors.New("convention: status transition not allowed")
	// ErrJustificationRequired is returned when rejecting, cancelling or deprecating without a reason.
	ErrJustificationRequired = errors.New("convention: justification required")
)

// InternshipKind selects the duration and age rules.
type InternshipKind string

const (
	KindImmersion    InternshipKind = "immersion"
	KindMiniStageCCI InternshipKind = "mini-stage-cci"
)

// Valid reports whether k is a known kind.
func (k InternshipKind) Valid() bool {
	return k == KindImmersion || k == KindMiniStageCCI
}

// Tutor is the establishment employee who supervises the beneficiary.
type Tutor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Job       string `json:"job"`
}

// Convention is the aggregate root. Its status only changes through Sign,
// Transition and Edit.
type Convention struct {
	ID                   string            `json:"id"`
	InternshipKind       InternshipKind    `json:"internshipKind"`
	Status               Status            `json:"status"`
	StatusJustification  string            `json:"statusJustification,omitempty"`
	AgencyID             string            `json:"agencyId"`
	DateSubmission       calendar.Date     `json:"dateSubmission"`
	DateStart            calendar.Date     `json:"dateStart"`
	DateEnd              calendar.Date     `json:"dateEnd"`
	DateValidation       *time.Time        `json:"dateValidation,omitempty"`
	Siret                string            `json:"siret"`
	BusinessName         string            `json:"businessName"`
	ImmersionAddress     string            `json:"immersionAddress"`
	ImmersionObjective   string            `json:"immersionObjective"`
	ImmersionActivities  string            `json:"immersionActivities"`
	IndividualProtection bool              `json:"individualProtection"`
	SanitaryPrevention   bool              `json:"sanitaryPrevention"`
	Schedule             schedule.Schedule `json:"schedule"`
	Signatories          Signatories       `json:"signatories"`
	EstablishmentTutor   Tutor             `json:"establishmentTutor"`
	SignatureFingerprint string            `json:"signatureFingerprint,omitempty"`
}

// Clone returns a deep copy.
func (c Convention) Clone() Convention {
	out := c
	out.Schedule.ComplexSchedule = c.Schedule.ComplexSchedule.Clone()
	out.Signatories = c.Signatories.clone()
	if c.DateValidation != nil {
		at := *c.DateValidation
		out.DateValidation = &at
	}
	return out
}

// SignedRoles returns the roles that have signed, in signing order.
func (c Convention) SignedRoles() []Role {
	var roles []Role
	for _, signatory := range c.Signatories.All() {
		if signatory.Person().Signed() {
			roles = append(roles, signatory.Role())
		}
	}
	return roles
}

// FullySigned reports whether every present signatory has signed.
func (c Convention) FullySigned() bool {
	for _, signatory := range c.Signatories.All() {
		if !signatory.Person().Signed() {
			return false
		}
	}
	return true
}

// Normalized returns a copy with every email in canonical form.
func (c Convention) Normalized() Convention {
	out := c.Clone()
	for _, role := range Roles {
		if identity := out.Signatories.identity(role); identity != nil {
			identity.Email = NormalizeEmail(identity.Email)
		}
	}
	out.EstablishmentTutor.Email = NormalizeEmail(out.EstablishmentTutor.Email)
	return out
}

// Unsigned returns a copy with every signature and the fingerprint removed.
func (c Convention) Unsigned() Convention {
	out := c.Clone()
	for _, role := range Roles {
		if identity := out.Signatories.identity(role); identity != nil {
			identity.SignedAt = nil
		}
	}
	out.SignatureFingerprint = ""
	return out
}

// ApplyLegacyAcceptance maps the boolean acceptance flags of older records
// onto signatures: beneficiaryAccepted signs the beneficiary side and
// enterpriseAccepted the establishment representative.
func ApplyLegacyAcceptance(c Convention, beneficiaryAccepted, enterpriseAccepted bool, at time.Time) Convention {
	out := c.Clone()
	mark := func(identity *Identity) {
		if identity != nil && identity.SignedAt == nil {
			signedAt := at
			identity.SignedAt = &signedAt
		}
	}
	if beneficiaryAccepted {
		mark(out.Signatories.identity(RoleBeneficiary))
		mark(out.Signatories.identity(RoleBeneficiaryRepresentative))
		mark(out.Signatories.identity(RoleBeneficiaryCurrentEmployer))
	}
	if enterpriseAccepted {
		mark(out.Signatories.identity(RoleEstablishmentRepresentative))
	}
	if len(out.SignedRoles()) > 0 && out.SignatureFingerprint == "" {
		out.SignatureFingerprint = Fingerprint(out)
	}
	return out
}
