package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medsheet/medsheet/internal/domain/medication"
	"github.com/medsheet/medsheet/internal/platform/db"
	"github.com/medsheet/medsheet/pkg/pagination"
)

// DefaultWindowDays is the schedule window used when a timesheet is rebuilt
// for a user who had none.
const DefaultWindowDays = 30

type Service struct {
	sheets Repository
	meds   medication.Repository
	gen    *Generator
	log    zerolog.Logger
}

func NewService(sheets Repository, meds medication.Repository, gen *Generator, logger zerolog.Logger) *Service {
	return &Service{sheets: sheets, meds: meds, gen: gen, log: logger}
}

// Create generates and stores a timesheet for the given medications over
// the given range. The new sheet is ACTIVE.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, medicationIDs []string, startStr, endStr string) (*Timesheet, error) {
	ids, err := parseIDs(medicationIDs)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(startStr, endStr)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, userID, ids, start, end)
}

// Edit regenerates a timesheet: the replacement is inserted first, then the
// old sheet is removed. A failed generation leaves the old sheet untouched.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, medicationIDs []string, startStr, endStr string) (*Timesheet, error) {
	old, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := parseIDs(medicationIDs)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(startStr, endStr)
	if err != nil {
		return nil, err
	}

	replacement, err := s.build(ctx, old.UserID, ids, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.sheets.Delete(ctx, old.ID); err != nil && !db.IsNotFound(err) {
		s.log.Warn().Err(err).Str("timesheet_id", old.ID.String()).
			Msg("replaced timesheet could not be removed")
	}
	return replacement, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Timesheet, error) {
	t, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.expireIfPast(ctx, t); err != nil {
		s.log.Warn().Err(err).Str("timesheet_id", t.ID.String()).
			Msg("could not mark timesheet expired")
	}
	if err := s.joinNames(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, pg pagination.Params) ([]*Timesheet, int, error) {
	sheets, total, err := s.sheets.ListByUser(ctx, userID, pg)
	if err != nil {
		return nil, 0, err
	}
	for _, t := range sheets {
		if _, err := s.expireIfPast(ctx, t); err != nil {
			s.log.Warn().Err(err).Str("timesheet_id", t.ID.String()).
				Msg("could not mark timesheet expired")
		}
		if err := s.joinNames(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return sheets, total, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.sheets.Delete(ctx, id)
}

// ActiveForUser returns the user's current ACTIVE timesheet, lazily
// expiring any whose window has passed. An expiry that cannot be persisted
// aborts the lookup; the stored row is still ACTIVE, so retrying against it
// would never terminate.
func (s *Service) ActiveForUser(ctx context.Context, userID uuid.UUID) (*Timesheet, error) {
	for {
		t, err := s.sheets.FirstActiveForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		expired, err := s.expireIfPast(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("expire timesheet %s: %w", t.ID, err)
		}
		if !expired {
			if err := s.joinNames(ctx, t); err != nil {
				return nil, err
			}
			return t, nil
		}
	}
}

// RebuildForUser regenerates the user's timesheet from their current
// medication set. Called after catalog changes: with no medications left
// the user's timesheets are removed; otherwise the existing window is kept,
// or a fresh default window is used when the user had no sheet.
func (s *Service) RebuildForUser(ctx context.Context, userID uuid.UUID) error {
	meds, err := s.meds.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(meds) == 0 {
		return s.sheets.DeleteByUser(ctx, userID)
	}

	start := time.Now()
	end := start.AddDate(0, 0, DefaultWindowDays)
	var old *Timesheet
	if existing, err := s.sheets.FirstActiveForUser(ctx, userID); err == nil {
		old = existing
		start, end = existing.StartDate, existing.EndDate
	} else if !db.IsNotFound(err) {
		return err
	}

	entries, err := s.gen.Build(ctx, meds, start, end)
	if err != nil {
		return err
	}
	joinEntryNames(entries, meds)

	replacement := &Timesheet{
		UserID:      userID,
		Medications: entries,
		Status:      StatusActive,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.sheets.Create(ctx, replacement); err != nil {
		return err
	}
	if old != nil {
		if err := s.sheets.Delete(ctx, old.ID); err != nil && !db.IsNotFound(err) {
			s.log.Warn().Err(err).Str("timesheet_id", old.ID.String()).
				Msg("replaced timesheet could not be removed")
		}
	}
	return nil
}

func (s *Service) build(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, start, end time.Time) (*Timesheet, error) {
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

	entries, err := s.gen.Build(ctx, meds, start, end)
	if err != nil {
		return nil, err
	}
	joinEntryNames(entries, meds)

	t := &Timesheet{
		UserID:      userID,
		Medications: entries,
		Status:      StatusActive,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.sheets.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// joinNames refreshes entry names from the current catalog so renames show
// up in stored sheets. Entries whose medication is gone keep the stored
// name.
func (s *Service) joinNames(ctx context.Context, t *Timesheet) error {
	var ids []uuid.UUID
	for _, entry := range t.Medications {
		if id, err := uuid.Parse(entry.ID); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	meds, err := s.meds.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	joinEntryNames(t.Medications, meds)
	return nil
}

func joinEntryNames(entries []MedicationEntry, meds []*medication.Medication) {
	names := make(map[string]string, len(meds))
	for _, m := range meds {
		names[m.ID.String()] = m.Name
	}
	for i := range entries {
		if name, ok := names[entries[i].ID]; ok {
			entries[i].Name = name
		}
	}
}

// expireIfPast flips an ACTIVE sheet whose window has closed to EXPIRED.
// Reports whether the sheet is expired; a non-nil error means the flip was
// not persisted and the stored row is still ACTIVE.
func (s *Service) expireIfPast(ctx context.Context, t *Timesheet) (bool, error) {
	if t.Status != StatusActive || time.Now().Before(t.EndDate) {
		return t.Status == StatusExpired, nil
	}
	t.Status = StatusExpired
	return true, s.sheets.UpdateStatus(ctx, t.ID, StatusExpired)
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("medication_ids is required")
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid medication id: %q", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date are required")
	}
	start, err := ParseRangeDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %q", startStr)
	}
	end, err := ParseRangeDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %q", endStr)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date must be after start_date")
	}
	return start, end, nil
}
