package usermedication

import (
	"time"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/internal/domain/medication"
)

// UserMedication assigns a catalog medication to a user, optionally with a
// per-user schedule overriding the catalog one.
type UserMedication struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	MedicationID   uuid.UUID  `json:"medication_id"`
	DosageSchedule string     `json:"dosageSchedule,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Detail is an assignment joined with its catalog entry, the shape served
// to clients listing their own medications.
type Detail struct {
	UserMedication
	Medication *medication.Medication `json:"medication"`
}
