package convention

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status is the lifecycle state of a convention.
type Status string

const (
	StatusDraft                Status = "DRAFT"
	StatusReadyToSign          Status = "READY_TO_SIGN"
	StatusPartiallySigned      Status = "PARTIALLY_SIGNED"
	StatusInReview             Status = "IN_REVIEW"
	StatusAcceptedByCounsellor Status = "ACCEPTED_BY_COUNSELLOR"
	StatusAcceptedByValidator  Status = "ACCEPTED_BY_VALIDATOR"
	StatusValidated            Status = "VALIDATED"
	StatusRejected             Status = "REJECTED"
	StatusCancelled            Status = "CANCELLED"
	StatusDeprecated           Status = "DEPRECATED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusDraft,
	StatusReadyToSign,
	StatusPartiallySigned,
	StatusInReview,
	StatusAcceptedByCounsellor,
	StatusAcceptedByValidator,
	StatusValidated,
	StatusRejected,
	StatusCancelled,
	StatusDeprecated,
}

// PreSignatureStatuses may be held while signatures are missing.
var PreSignatureStatuses = []Status{
	StatusDraft,
	StatusReadyToSign,
	StatusPartiallySigned,
	StatusRejected,
	StatusCancelled,
	StatusDeprecated,
}

// ParseStatus resolves a status name.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !slices.Contains(Statuses, status) {
		return "", fmt.Errorf("convention: unknown status %q", value)
	}
	return status, nil
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	switch s {
	case StatusValidated, StatusRejected, StatusCancelled, StatusDeprecated:
		return true
	default:
		return false
	}
}

// allowsMissingSignatures reports whether s may be held without every signature.
func (s Status) allowsMissingSignatures() bool {
	return slices.Contains(PreSignatureStatuses, s)
}

var transitions = map[Status][]Status{
	StatusDraft:                {StatusReadyToSign, StatusRejected, StatusCancelled, StatusDeprecated},
	StatusReadyToSign:          {StatusRejected, StatusCancelled, StatusDeprecated},
	StatusPartiallySigned:      {StatusRejected, StatusCancelled, StatusDeprecated},
	StatusInReview:             {StatusAcceptedByCounsellor, StatusAcceptedByValidator, StatusValidated, StatusRejected, StatusCancelled, StatusDeprecated},
	StatusAcceptedByCounsellor: {StatusAcceptedByValidator, StatusValidated, StatusRejected, StatusCancelled, StatusDeprecated},
	StatusAcceptedByValidator:  {StatusValidated, StatusRejected, StatusCancelled, StatusDeprecated},
}

// CanTransition reports whether an administrative action may move from to.
// Signature-driven moves go through Sign instead.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// DeriveStatus computes the signature-driven status: every present
// signatory signed gives IN_REVIEW, some gives PARTIALLY_SIGNED and none
// keeps DRAFT or READY_TO_SIGN.
func DeriveStatus(c Convention) Status {
	signed := len(c.SignedRoles())
	switch {
	case signed > 0 && c.FullySigned():
		return StatusInReview
	case signed > 0:
		return StatusPartiallySigned
	case c.Status == StatusDraft:
		return StatusDraft
	default:
		return StatusReadyToSign
	}
}

// Sign records role's signature at the given instant and recomputes the
// status. A role that already signed an unchanged convention gets it back
// untouched with ErrAlreadySigned. Signing content that differs from what
// earlier signatories signed fails with ErrPayloadChanged. A convention that
// breaks a validity rule cannot be signed; the failures come back as
// *validation.Error.
func Sign(c Convention, role Role, at time.Time, rules Rules) (Convention, error) {
	role, err := ParseRole(string(role))
	if err != nil {
		return c, err
	}
	if _, ok := c.Signatories.Get(role); !ok {
		return c, fmt.Errorf("%w: %s", ErrMissingSignatory, role)
	}

	fingerprint := Fingerprint(c)
	if len(c.SignedRoles()) > 0 && c.SignatureFingerprint != fingerprint {
		return c, ErrPayloadChanged
	}

	if signatory, _ := c.Signatories.Get(role); signatory.Person().Signed() {
		return c, ErrAlreadySigned
	}

	if c.Status != StatusReadyToSign && c.Status != StatusPartiallySigned {
		return c, fmt.Errorf("%w: cannot sign a convention in status %s", ErrTransitionNotAllowed, c.Status)
	}

	out := c.Clone()
	signedAt := at.UTC()
	out.Signatories.identity(role).SignedAt = &signedAt
	out.SignatureFingerprint = fingerprint
	out.Status = DeriveStatus(out)
	if err := Validate(out, rules).Err(); err != nil {
		return c, err
	}
	return out, nil
}

// TransitionRequest carries an administrative status change.
type TransitionRequest struct {
	Target        Status
	Justification string
	At            time.Time
	Rules         Rules
}

// Transition applies an administrative status change. Acceptances and the
// final validation require the convention to be fully signed and to pass
// every validity rule; rule failures come back as *validation.Error.
// Rejection, cancellation and deprecation need a justification.
func Transition(c Convention, req TransitionRequest) (Convention, error) {
	if !CanTransition(c.Status, req.Target) {
		return c, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, c.Status, req.Target)
	}

	out := c.Clone()
	switch req.Target {
	case StatusRejected, StatusCancelled, StatusDeprecated:
		justification := strings.TrimSpace(req.Justification)
		if justification == "" {
			return c, fmt.Errorf("%w for %s", ErrJustificationRequired, req.Target)
		}
		out.StatusJustification = justification
	case StatusReadyToSign:
		if err := Validate(out, req.Rules).Err(); err != nil {
			return c, err
		}
	case StatusAcceptedByCounsellor, StatusAcceptedByValidator, StatusValidated:
		if !out.FullySigned() {
			return c, fmt.Errorf("%w: %s requires every signature", ErrTransitionNotAllowed, req.Target)
		}
		if out.SignatureFingerprint != Fingerprint(out) {
			return c, ErrPayloadChanged
		}
		candidate := out
		candidate.Status = req.Target
		if err := Validate(candidate, req.Rules).Err(); err != nil {
			return c, err
		}
		if req.Target == StatusValidated {
			validatedAt := req.At.UTC()
			out.DateValidation = &validatedAt
		}
	}
	out.Status = req.Target
	return out, nil
}

// Edit applies mutate to a copy of c. When the signed content changes,
// recorded signatures are dropped and the convention goes back to
// READY_TO_SIGN, or to DRAFT when the new content breaks a validity rule.
// Status, signatures and the fingerprint cannot be changed through mutate.
// Terminal conventions cannot be edited.
func Edit(c Convention, rules Rules, mutate func(*Convention)) (Convention, error) {
	if c.Status.Terminal() {
		return c, fmt.Errorf("%w: cannot edit a convention in status %s", ErrTransitionNotAllowed, c.Status)
	}

	before := Fingerprint(c)
	out := c.Clone()
	mutate(&out)

	out.ID = c.ID
	out.Status = c.Status
	out.StatusJustification = c.StatusJustification
	out.SignatureFingerprint = c.SignatureFingerprint
	for _, role := range Roles {
		identity := out.Signatories.identity(role)
		if identity == nil {
			continue
		}
		identity.SignedAt = nil
		if original := c.Signatories.identity(role); original != nil {
			identity.SignedAt = original.clone().SignedAt
		}
	}
	out = out.Normalized()

	if Fingerprint(out) == before {
		return out, nil
	}
	for _, role := range Roles {
		if identity := out.Signatories.identity(role); identity != nil {
			identity.SignedAt = nil
		}
	}
	out.SignatureFingerprint = ""
	if c.Status != StatusDraft {
		out.Status = StatusReadyToSign
		if len(Validate(out, rules)) > 0 {
			out.Status = StatusDraft
		}
	}
	return out, nil
}
