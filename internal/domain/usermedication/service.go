package usermedication

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/internal/domain/medication"
	"github.com/medsheet/medsheet/internal/platform/db"
	"github.com/medsheet/medsheet/pkg/pagination"
)

type Service struct {
	assignments Repository
	catalog     medication.Repository
}

func NewService(assignments Repository, catalog medication.Repository) *Service {
	return &Service{assignments: assignments, catalog: catalog}
}

// Assign links a catalog medication to a user. The medication must exist.
func (s *Service) Assign(ctx context.Context, um *UserMedication) error {
	if um.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if um.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if um.StartDate != nil && um.EndDate != nil && um.EndDate.Before(*um.StartDate) {
		return fmt.Errorf("end_date must not be before start_date")
	}

	if _, err := s.catalog.GetByID(ctx, um.MedicationID); err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("medication %s not found", um.MedicationID)
		}
		return err
	}
	return s.assignments.Create(ctx, um)
}

func (s *Service) Unassign(ctx context.Context, id uuid.UUID) error {
	return s.assignments.Delete(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, pg pagination.Params) ([]*Detail, int, error) {
	return s.assignments.ListByUser(ctx, userID, pg)
}
