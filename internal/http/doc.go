// Package http provides HTTP handlers and middleware for the convention API.
//
// The router exposes the following endpoints:
//   - GET /conventions, POST /conventions: list conventions (filters `status`,
//     repeatable, and `agencyId`) and create a draft. The body is the convention
//     document; `schedule` may use the legacy simpleSchedule/selectedIndex shape.
//     Creation responds 201 with {"convention","version","createdAt","updatedAt",
//     "issues"} where issues lists the rules the draft still breaks.
//   - GET /conventions/{id}, PUT /conventions/{id}: read or replace a convention.
//     Updates carry the `version` they were based on and answer 409 when stale.
//   - POST /conventions/{id}/signatures/{role}: sign as role (beneficiary,
//     beneficiary-representative, beneficiary-current-employer,
//     establishment-representative).
//   - POST /conventions/{id}/status: administrative status change. Body:
//     {"status","justification","version"}.
//   - POST /conventions/validate: run every rule on a document without storing it.
//   - POST /schedules/expand: expand {"regular","from","to"} into the canonical
//     schedule. `?format=legacy` renders the legacy shape.
//   - POST /schedules/validate: check a schedule document, optionally against
//     a reduced `weeklyCeilingHours`.
//   - GET /healthz: storage liveness.
//
// Validation failures answer 422 with {"message","errors":[{"path","message"}]}
// in rule order. Request/response DTOs live alongside their handlers.
package http
