package convention

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/immersion-facile/convention-core/internal/calendar"
)

// Role identifies a signatory.
type Role string

const (
	RoleBeneficiary                 Role = "beneficiary"
	RoleBeneficiaryRepresentative   Role = "beneficiary-representative"
	RoleBeneficiaryCurrentEmployer  Role = "beneficiary-current-employer"
	RoleEstablishmentRepresentative Role = "establishment-representative"
)

// Roles lists the signatory roles in signing order.
var Roles = []Role{
	RoleBeneficiary,
	RoleBeneficiaryRepresentative,
	RoleBeneficiaryCurrentEmployer,
	RoleEstablishmentRepresentative,
}

// ParseRole resolves a role tag, mapping the legacy "establishment" and
// "mentor" tags onto the establishment representative.
func ParseRole(value string) (Role, error) {
	switch value {
	case string(RoleBeneficiary), string(RoleBeneficiaryRepresentative),
		string(RoleBeneficiaryCurrentEmployer), string(RoleEstablishmentRepresentative):
		return Role(value), nil
	case "establishment", "mentor":
		return RoleEstablishmentRepresentative, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, value)
	}
}

// field is the JSON key a role is stored under.
func (r Role) field() string {
	switch r {
	case RoleBeneficiary:
		return "beneficiary"
	case RoleBeneficiaryRepresentative:
		return "beneficiaryRepresentative"
	case RoleBeneficiaryCurrentEmployer:
		return "beneficiaryCurrentEmployer"
	case RoleEstablishmentRepresentative:
		return "establishmentRepresentative"
	default:
		return string(r)
	}
}

// Path returns the dotted field path of the role's record.
func (r Role) Path() string {
	return "signatories." + r.field()
}

// Identity holds the fields every signatory carries.
type Identity struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	SignedAt  *time.Time `json:"signedAt,omitempty"`
}

// Signed reports whether a signature is recorded.
func (i Identity) Signed() bool {
	return i.SignedAt != nil
}

// Signatory is one of the four closed signatory records, selected by Role.
type Signatory interface {
	Role() Role
	Person() Identity
	isSignatory()
}

// Beneficiary is the person doing the immersion.
type Beneficiary struct {
	Identity
	Birthdate        calendar.Date `json:"birthdate"`
	LevelOfEducation string        `json:"levelOfEducation,omitempty"`
	SchoolName       string        `json:"schoolName,omitempty"`
	EmergencyContact string        `json:"emergencyContact,omitempty"`
}

// BeneficiaryRepresentative is the legal guardian of a minor beneficiary.
type BeneficiaryRepresentative struct {
	Identity
}

// BeneficiaryCurrentEmployer is the employer of an already employed beneficiary.
type BeneficiaryCurrentEmployer struct {
	Identity
	BusinessName  string `json:"businessName"`
	BusinessSiret string `json:"businessSiret"`
	Job           string `json:"job"`
}

// EstablishmentRepresentative signs on behalf of the host establishment.
type EstablishmentRepresentative struct {
	Identity
}

func (Beneficiary) Role() Role                 { return RoleBeneficiary }
func (BeneficiaryRepresentative) Role() Role   { return RoleBeneficiaryRepresentative }
func (BeneficiaryCurrentEmployer) Role() Role  { return RoleBeneficiaryCurrentEmployer }
func (EstablishmentRepresentative) Role() Role { return RoleEstablishmentRepresentative }

func (s Beneficiary) Person() Identity                 { return s.Identity }
func (s BeneficiaryRepresentative) Person() Identity   { return s.Identity }
func (s BeneficiaryCurrentEmployer) Person() Identity  { return s.Identity }
func (s EstablishmentRepresentative) Person() Identity { return s.Identity }

func (Beneficiary) isSignatory()                 {}
func (BeneficiaryRepresentative) isSignatory()   {}
func (BeneficiaryCurrentEmployer) isSignatory()  {}
func (EstablishmentRepresentative) isSignatory() {}

// Signatories groups the parties of a convention. The representative and the
// current employer are optional.
type Signatories struct {
	Beneficiary                 Beneficiary                 `json:"beneficiary"`
	BeneficiaryRepresentative   *BeneficiaryRepresentative  `json:"beneficiaryRepresentative,omitempty"`
	BeneficiaryCurrentEmployer  *BeneficiaryCurrentEmployer `json:"beneficiaryCurrentEmployer,omitempty"`
	EstablishmentRepresentative EstablishmentRepresentative `json:"establishmentRepresentative"`
}

// All returns the present signatories in signing order.
func (s Signatories) All() []Signatory {
	out := []Signatory{s.Beneficiary}
	if s.BeneficiaryRepresentative != nil {
		out = append(out, *s.BeneficiaryRepresentative)
	}
	if s.BeneficiaryCurrentEmployer != nil {
		out = append(out, *s.BeneficiaryCurrentEmployer)
	}
	return append(out, s.EstablishmentRepresentative)
}

// Get returns the signatory holding role, if present.
func (s Signatories) Get(role Role) (Signatory, bool) {
	for _, signatory := range s.All() {
		if signatory.Role() == role {
			return signatory, true
		}
	}
	return nil, false
}

// identity returns a pointer to the identity stored for role so it can be
// updated in place on a copy.
func (s *Signatories) identity(role Role) *Identity {
	switch role {
	case RoleBeneficiary:
		return &s.Beneficiary.Identity
	case RoleBeneficiaryRepresentative:
		if s.BeneficiaryRepresentative == nil {
			return nil
		}
		return &s.BeneficiaryRepresentative.Identity
	case RoleBeneficiaryCurrentEmployer:
		if s.BeneficiaryCurrentEmployer == nil {
			return nil
		}
		return &s.BeneficiaryCurrentEmployer.Identity
	case RoleEstablishmentRepresentative:
		return &s.EstablishmentRepresentative.Identity
	default:
		return nil
	}
}

// clone copies the optional records so the copy can be mutated freely.
func (s Signatories) clone() Signatories {
	out := s
	out.Beneficiary.Identity = s.Beneficiary.Identity.clone()
	out.EstablishmentRepresentative.Identity = s.EstablishmentRepresentative.Identity.clone()
	if s.BeneficiaryRepresentative != nil {
		rep := *s.BeneficiaryRepresentative
		rep.Identity = rep.Identity.clone()
		out.BeneficiaryRepresentative = &rep
	}
	if s.BeneficiaryCurrentEmployer != nil {
		employer := *s.BeneficiaryCurrentEmployer
		employer.Identity = employer.Identity.clone()
		out.BeneficiaryCurrentEmployer = &employer
	}
	return out
}

func (i Identity) clone() Identity {
	if i.SignedAt != nil {
		at := *i.SignedAt
		i.SignedAt = &at
	}
	return i
}

// UnmarshalJSON accepts the legacy "establishment" and "mentor" keys for the
// establishment representative.
func (s *Signatories) UnmarshalJSON(data []byte) error {
	type plain Signatories
	var decoded struct {
		plain
		Establishment *EstablishmentRepresentative `json:"establishment"`
		Mentor        *EstablishmentRepresentative `json:"mentor"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	out := Signatories(decoded.plain)
	if out.EstablishmentRepresentative == (EstablishmentRepresentative{}) {
		switch {
		case decoded.Establishment != nil:
			out.EstablishmentRepresentative = *decoded.Establishment
		case decoded.Mentor != nil:
			out.EstablishmentRepresentative = *decoded.Mentor
		}
	}
	*s = out
	return nil
}
