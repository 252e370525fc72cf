package usermedication

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsheet/medsheet/internal/domain/medication"
	"github.com/medsheet/medsheet/internal/platform/db"
	"github.com/medsheet/medsheet/pkg/pagination"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, um *UserMedication) error {
	um.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_medications (id, user_id, medication_id, dosage_schedule, start_date, end_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		um.ID, um.UserID, um.MedicationID, um.DosageSchedule, um.StartDate, um.EndDate, um.Notes,
	).Scan(&um.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*UserMedication, error) {
	var um UserMedication
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, medication_id, dosage_schedule, start_date, end_date, notes, created_at
		FROM user_medications WHERE id = $1`, id,
	).Scan(&um.ID, &um.UserID, &um.MedicationID, &um.DosageSchedule,
		&um.StartDate, &um.EndDate, &um.Notes, &um.CreatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &um, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

var sortColumns = map[string]string{
	"start_date": "um.start_date",
	"end_date":   "um.end_date",
	"created_at": "um.created_at",
	"name":       "m.name",
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, pg pagination.Params) ([]*Detail, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM user_medications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	// The id tiebreak must be qualified here because of the join.
	order := "ORDER BY um.id DESC"
	if col, ok := sortColumns[pg.SortField]; ok {
		dir := "DESC"
		if pg.SortDirection == "asc" {
			dir = "ASC"
		}
		order = fmt.Sprintf("ORDER BY %s %s, um.id DESC", col, dir)
	}

	query := fmt.Sprintf(`
		SELECT um.id, um.user_id, um.medication_id, um.dosage_schedule,
			um.start_date, um.end_date, um.notes, um.created_at,
			m.id, m.user_id, m.name, m.contents, m.objective,
			m.side_effects, m.dosage_schedule, m.created_at, m.updated_at
		FROM user_medications um
		JOIN medications m ON m.id = um.medication_id
		WHERE um.user_id = $1 %s %s`,
		order, pg.SQL())

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var details []*Detail
	for rows.Next() {
		var d Detail
		var m medication.Medication
		if err := rows.Scan(&d.ID, &d.UserID, &d.MedicationID, &d.DosageSchedule,
			&d.StartDate, &d.EndDate, &d.Notes, &d.CreatedAt,
			&m.ID, &m.UserID, &m.Name, &m.Contents, &m.Objective,
			&m.SideEffects, &m.DosageSchedule, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		d.Medication = &m
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return details, total, nil
}
