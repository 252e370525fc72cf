package usermedication

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/pkg/pagination"
)

// Repository is the persistence boundary for medication assignments.
type Repository interface {
	Create(ctx context.Context, um *UserMedication) error
	GetByID(ctx context.Context, id uuid.UUID) (*UserMedication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, pg pagination.Params) ([]*Detail, int, error)
}
