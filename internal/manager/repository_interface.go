package manager

import "context"

type Repository interface {
	List(ctx context.Context) ([]Manager, error)
	GetByID(ctx context.Context, id int) (*Manager, error)
	GetByEmail(ctx context.Context, email string) (*Manager, error)

	NameExists(ctx context.Context, name string, excludeID int) (bool, error)
	PhoneExists(ctx context.Context, phone string, excludeID int) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int) (bool, error)

	Create(ctx context.Context, name, phone, email, passwordHash string) (*Manager, error)
	Update(ctx context.Context, id int, ch Changes) (*Manager, error)
	// Delete removes the manager after freezing their name on every
	// membership they recorded. It reports false when id does not exist.
	Delete(ctx context.Context, id int) (bool, error)
}
