package timesheet

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusExpired  = "EXPIRED"
)

// DateLayout is the timestamp format used for schedule dates, both in the
// generated entries and in request date ranges.
const DateLayout = "2006-01-02T15:04:05"

// DateOnlyLayout is accepted for request date ranges as a convenience.
const DateOnlyLayout = "2006-01-02"

// MedicationEntry is one medication's schedule inside a timesheet. Dates
// are DateLayout strings. This is the shape the generator's output contract
// promises, stored verbatim.
type MedicationEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Dates  []string `json:"dates"`
	Dosage string   `json:"dosage"`
	Advise string   `json:"advise"`
}

// Timesheet is a generated dosage schedule for one user over a date range.
type Timesheet struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Medications []MedicationEntry `json:"medications"`
	Status      string            `json:"status"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ParseRangeDate parses a request date that may carry a time component.
func ParseRangeDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(DateOnlyLayout, s)
}
