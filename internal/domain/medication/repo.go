package medication

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/pkg/pagination"
)

// Repository is the persistence boundary for the medication catalog.
type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filters map[string]string, pg pagination.Params) ([]*Medication, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Medication, error)
}
