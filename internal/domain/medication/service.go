package medication

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medsheet/medsheet/internal/platform/ai"
	"github.com/medsheet/medsheet/pkg/pagination"
)

// TimesheetRebuilder regenerates a user's timesheet after the medication
// set changes. Defined here so the timesheet package can depend on this one
// without a cycle.
type TimesheetRebuilder interface {
	RebuildForUser(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	meds       Repository
	gateway    ai.Gateway
	timesheets TimesheetRebuilder
	log        zerolog.Logger
}

func NewService(meds Repository, gateway ai.Gateway, logger zerolog.Logger) *Service {
	return &Service{meds: meds, gateway: gateway, log: logger}
}

// SetTimesheetRebuilder attaches the rebuild hook. Wired in main after the
// timesheet service exists.
func (s *Service) SetTimesheetRebuilder(r TimesheetRebuilder) {
	s.timesheets = r
}

func validate(m *Medication) error {
	for field, value := range map[string]string{
		"name":           m.Name,
		"contents":       m.Contents,
		"objective":      m.Objective,
		"sideEffects":    m.SideEffects,
		"dosageSchedule": m.DosageSchedule,
	} {
		if value == "" {
			return fmt.Errorf("%s is required", field)
		}
	}
	return nil
}

// Create stores a new medication and rebuilds the creator's timesheet.
func (s *Service) Create(ctx context.Context, m *Medication) error {
	if m.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if err := validate(m); err != nil {
		return err
	}
	if err := s.meds.Create(ctx, m); err != nil {
		return err
	}
	s.rebuild(ctx, m.UserID)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.meds.GetByID(ctx, id)
}

// GetByIDs fetches a batch of medications and fails when any id is missing.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Medication, error) {
	meds, err := s.meds.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(meds) != len(ids) {
		found := make(map[uuid.UUID]bool, len(meds))
		for _, m := range meds {
			found[m.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, fmt.Errorf("medication %s not found", id)
			}
		}
	}
	return meds, nil
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.meds.Update(ctx, m)
}

// Delete removes a medication and rebuilds its owner's timesheet. When the
// owner has no medications left the rebuild removes the timesheet instead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.meds.Delete(ctx, id); err != nil {
		return err
	}
	s.rebuild(ctx, m.UserID)
	return nil
}

func (s *Service) Search(ctx context.Context, filters map[string]string, pg pagination.Params) ([]*Medication, int, error) {
	return s.meds.Search(ctx, filters, pg)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Medication, error) {
	return s.meds.ListByUser(ctx, userID)
}

// rebuild runs the timesheet side effect. The medication write has already
// committed, so a rebuild failure is logged rather than unwinding it.
func (s *Service) rebuild(ctx context.Context, userID uuid.UUID) {
	if s.timesheets == nil {
		return
	}
	if err := s.timesheets.RebuildForUser(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).
			Msg("timesheet rebuild after medication change failed")
	}
}
