package paymentmethod

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

func (r *repository) List(ctx context.Context) ([]PaymentMethod, error) {
	query := `SELECT id_method, name_method FROM payment_methods ORDER BY id_method`

	methods := []PaymentMethod{}
	if err := r.db.SelectContext(ctx, &methods, query); err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*PaymentMethod, error) {
	query := `SELECT id_method, name_method FROM payment_methods WHERE id_method = $1`

	var m PaymentMethod
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) NameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM payment_methods WHERE LOWER(name_method) = LOWER($1) AND id_method <> $2)`,
		name, excludeID)
}

func (r *repository) Create(ctx context.Context, name string) (*PaymentMethod, error) {
	query := `
		INSERT INTO payment_methods (name_method)
		VALUES ($1)
		RETURNING id_method, name_method
	`

	var m PaymentMethod
	if err := r.db.GetContext(ctx, &m, query, name); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Update(ctx context.Context, id int, name string) (*PaymentMethod, error) {
	query := `
		UPDATE payment_methods
		SET name_method = $1
		WHERE id_method = $2
		RETURNING id_method, name_method
	`

	var m PaymentMethod
	if err := r.db.GetContext(ctx, &m, query, name, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id_method = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) HasMemberships(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM memberships WHERE id_method = $1)`, id)
}
