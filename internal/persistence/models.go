package persistence

import "time"

// Convention is the stored form of a convention: the indexed columns plus the
// full aggregate encoded as JSON.
type Convention struct {
	ID             string
	Status         string
	InternshipKind string
	AgencyID       string
	DateStart      string
	DateEnd        string
	Payload        []byte
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
