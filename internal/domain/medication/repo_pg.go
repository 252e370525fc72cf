package medication

import (
	"context"
	"fmt"
	"strings"

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

const medCols = `id, user_id, name, contents, objective, side_effects, dosage_schedule, created_at, updated_at`

func scanMed(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Contents, &m.Objective,
		&m.SideEffects, &m.DosageSchedule, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &m, nil
}

func collectMeds(rows pgx.Rows) ([]*Medication, error) {
	defer rows.Close()
	var meds []*Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Contents, &m.Objective,
			&m.SideEffects, &m.DosageSchedule, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		meds = append(meds, &m)
	}
	return meds, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO medications (id, user_id, name, contents, objective, side_effects, dosage_schedule)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		m.ID, m.UserID, m.Name, m.Contents, m.Objective, m.SideEffects, m.DosageSchedule,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return scanMed(r.pool.QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = $1`, id))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Medication, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return collectMeds(rows)
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medications
		SET name = $2, contents = $3, objective = $4, side_effects = $5,
			dosage_schedule = $6, updated_at = now()
		WHERE id = $1`,
		m.ID, m.Name, m.Contents, m.Objective, m.SideEffects, m.DosageSchedule)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// sortColumns is the allowlist of request sort fields.
var sortColumns = map[string]string{
	"name":         "name",
	"contents":     "contents",
	"objective":    "objective",
	"side_effects": "side_effects",
	"created_at":   "created_at",
}

func (r *repoPG) Search(ctx context.Context, filters map[string]string, pg pagination.Params) ([]*Medication, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	for _, col := range []string{"name", "contents", "objective", "side_effects"} {
		if v, ok := filters[col]; ok && v != "" {
			args = append(args, v)
			where = append(where, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", col, len(args)))
		}
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM medications WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM medications WHERE %s %s %s`,
		medCols, cond, pg.OrderBy(sortColumns[pg.SortField]), pg.SQL())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	meds, err := collectMeds(rows)
	if err != nil {
		return nil, 0, err
	}
	return meds, total, nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Medication, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+medCols+` FROM medications WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectMeds(rows)
}
