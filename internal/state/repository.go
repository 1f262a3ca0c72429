package state

import (
	"context"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]State, error) {
	query := `
		SELECT id_state, name_state
		FROM states
		ORDER BY id_state
	`

	states := []State{}
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*State, error) {
	query := `SELECT id_state, name_state FROM states WHERE id_state = $1`

	var s State
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) NameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM states WHERE LOWER(name_state) = LOWER($1) AND id_state <> $2)`,
		name, excludeID)
}

func (r *repository) Create(ctx context.Context, name string) (*State, error) {
	query := `
		INSERT INTO states (name_state)
		VALUES ($1)
		RETURNING id_state, name_state
	`

	var s State
	if err := r.db.GetContext(ctx, &s, query, name); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, id int, name string) (*State, error) {
	query := `
		UPDATE states
		SET name_state = $1
		WHERE id_state = $2
		RETURNING id_state, name_state
	`

	var s State
	if err := r.db.GetContext(ctx, &s, query, name, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM states WHERE id_state = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) HasMemberships(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM memberships WHERE id_state = $1)`, id)
}
