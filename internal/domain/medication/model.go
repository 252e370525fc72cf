package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a catalog entry. The five descriptive fields are free text
// and all required; the JSON key casing matches the public API contract.
type Medication struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Contents       string    `json:"contents"`
	Objective      string    `json:"objective"`
	SideEffects    string    `json:"sideEffects"`
	DosageSchedule string    `json:"dosageSchedule"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
