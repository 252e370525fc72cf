package timesheet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsheet/medsheet/internal/platform/db"
	"github.com/medsheet/medsheet/pkg/pagination"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const sheetCols = `id, user_id, medications, status, start_date, end_date, created_at, updated_at`

func scanSheet(row pgx.Row) (*Timesheet, error) {
	var t Timesheet
	err := row.Scan(&t.ID, &t.UserID, &t.Medications, &t.Status,
		&t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &t, nil
}

func (r *repoPG) Create(ctx context.Context, t *Timesheet) error {
	t.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO timesheets (id, user_id, medications, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.Medications, t.Status, t.StartDate, t.EndDate,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Timesheet, error) {
	return scanSheet(r.pool.QueryRow(ctx,
		`SELECT `+sheetCols+` FROM timesheets WHERE id = $1`, id))
}

var sortColumns = map[string]string{
	"status":     "status",
	"start_date": "start_date",
	"end_date":   "end_date",
	"created_at": "created_at",
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, pg pagination.Params) ([]*Timesheet, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM timesheets WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM timesheets WHERE user_id = $1 %s %s`,
		sheetCols, pg.OrderBy(sortColumns[pg.SortField]), pg.SQL())
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sheets []*Timesheet
	for rows.Next() {
		var t Timesheet
		if err := rows.Scan(&t.ID, &t.UserID, &t.Medications, &t.Status,
			&t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sheets = append(sheets, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sheets, total, nil
}

func (r *repoPG) FirstActiveForUser(ctx context.Context, userID uuid.UUID) (*Timesheet, error) {
	return scanSheet(r.pool.QueryRow(ctx, `
		SELECT `+sheetCols+` FROM timesheets
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID, StatusActive))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE timesheets SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM timesheets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM timesheets WHERE user_id = $1`, userID)
	return err
}
