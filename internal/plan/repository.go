package plan

import (
	"context"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"

	"github.com/jmoiron/sqlx"
)

const planColumns = `id_plan, days_duration, price, plan_description`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY days_duration, id_plan`

	plans := []Plan{}
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id_plan = $1`

	var p Plan
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) DescriptionExists(ctx context.Context, description string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM plans WHERE LOWER(plan_description) = LOWER($1) AND id_plan <> $2)`,
		description, excludeID)
}

func (r *repository) Create(ctx context.Context, days int, price float64, description string) (*Plan, error) {
	query := `
		INSERT INTO plans (days_duration, price, plan_description)
		VALUES ($1, $2, $3)
		RETURNING ` + planColumns

	var p Plan
	if err := r.db.GetContext(ctx, &p, query, days, price, description); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id int, days *int, price *float64, description *string) (*Plan, error) {
	query := `
		UPDATE plans
		SET days_duration = COALESCE($1, days_duration),
			price = COALESCE($2, price),
			plan_description = COALESCE($3, plan_description)
		WHERE id_plan = $4
		RETURNING ` + planColumns

	var p Plan
	if err := r.db.GetContext(ctx, &p, query, days, price, description, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id_plan = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) HasMemberships(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM memberships WHERE id_plan = $1)`, id)
}
