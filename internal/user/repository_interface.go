package user

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// WithTx returns a Repository bound to tx.
	WithTx(tx *sqlx.Tx) Repository

	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	PhoneExists(ctx context.Context, phone string, excludeID int) (bool, error)
	Create(ctx context.Context, name, phone string) (*User, error)
	Update(ctx context.Context, id int, name, phone *string) (*User, error)
	Delete(ctx context.Context, id int) (bool, error)
}
