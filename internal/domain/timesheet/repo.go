package timesheet

import (
	"context"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/pkg/pagination"
)

// Repository is the persistence boundary for timesheets.
type Repository interface {
	Create(ctx context.Context, t *Timesheet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Timesheet, error)
	ListByUser(ctx context.Context, userID uuid.UUID, pg pagination.Params) ([]*Timesheet, int, error)
	FirstActiveForUser(ctx context.Context, userID uuid.UUID) (*Timesheet, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
