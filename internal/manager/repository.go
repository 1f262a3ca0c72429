package manager

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"

	"github.com/jmoiron/sqlx"
)

const (
	NameConstraint  = "managers_name_manager_key"
	PhoneConstraint = "managers_phone_key"
	EmailConstraint = "managers_email_key"
)

const managerColumns = `id_manager, name_manager, phone, email, password, status, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers ORDER BY id_manager ASC`

	managers := []Manager{}
	if err := r.db.SelectContext(ctx, &managers, query); err != nil {
		return nil, err
	}
	return managers, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers WHERE id_manager = $1`

	var m Manager
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers WHERE LOWER(email) = LOWER($1)`

	var m Manager
	if err := r.db.GetContext(ctx, &m, query, email); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) NameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM managers WHERE name_manager = $1 AND id_manager <> $2)`,
		name, excludeID)
}

func (r *repository) PhoneExists(ctx context.Context, phone string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM managers WHERE phone = $1 AND id_manager <> $2)`,
		phone, excludeID)
}

func (r *repository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM managers WHERE LOWER(email) = LOWER($1) AND id_manager <> $2)`,
		email, excludeID)
}

func (r *repository) Create(ctx context.Context, name, phone, email, passwordHash string) (*Manager, error) {
	query := `
		INSERT INTO managers (name_manager, phone, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + managerColumns

	var m Manager
	if err := r.db.GetContext(ctx, &m, query, name, phone, email, passwordHash); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Update(ctx context.Context, id int, ch Changes) (*Manager, error) {
	query := `
		UPDATE managers
		SET name_manager = COALESCE($1, name_manager),
			phone = COALESCE($2, phone),
			email = COALESCE($3, email),
			password = COALESCE($4, password),
			status = COALESCE($5, status),
			updated_at = NOW()
		WHERE id_manager = $6
		RETURNING ` + managerColumns

	var m Manager
	err := r.db.GetContext(ctx, &m, query, ch.Name, ch.Phone, ch.Email, ch.PasswordHash, ch.Status, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	deleted := false
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var name string
		err := tx.GetContext(ctx, &name,
			`SELECT name_manager FROM managers WHERE id_manager = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE memberships
			SET manager_name_snapshot = $1, id_manager = NULL
			WHERE id_manager = $2
		`, name, id)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM managers WHERE id_manager = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	return deleted, err
}
