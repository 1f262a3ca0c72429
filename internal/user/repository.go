package user

import (
	"context"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"

	"github.com/jmoiron/sqlx"
)

// PhoneConstraint is the unique constraint on users.phone.
const PhoneConstraint = "users_phone_key"

const userColumns = `id_user, name_user, phone, created_at, updated_at`

type repository struct {
	exec db.Querier
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{exec: conn}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{exec: tx}
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id_user DESC`

	users := []User{}
	if err := r.exec.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id_user = $1`

	var u User
	if err := r.exec.GetContext(ctx, &u, query, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) PhoneExists(ctx context.Context, phone string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.exec,
		`SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1 AND id_user <> $2)`,
		phone, excludeID)
}

func (r *repository) Create(ctx context.Context, name, phone string) (*User, error) {
	query := `
		INSERT INTO users (name_user, phone)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	var u User
	if err := r.exec.GetContext(ctx, &u, query, name, phone); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes the non-nil fields and refreshes updated_at.
func (r *repository) Update(ctx context.Context, id int, name, phone *string) (*User, error) {
	query := `
		UPDATE users
		SET name_user = COALESCE($1, name_user),
			phone = COALESCE($2, phone),
			updated_at = NOW()
		WHERE id_user = $3
		RETURNING ` + userColumns

	var u User
	if err := r.exec.GetContext(ctx, &u, query, name, phone, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes the user; their memberships go with them.
func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.exec.ExecContext(ctx, `DELETE FROM users WHERE id_user = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
