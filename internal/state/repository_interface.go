package state

import "context"

type Repository interface {
	List(ctx context.Context) ([]State, error)
	GetByID(ctx context.Context, id int) (*State, error)
	NameExists(ctx context.Context, name string, excludeID int) (bool, error)
	Create(ctx context.Context, name string) (*State, error)
	Update(ctx context.Context, id int, name string) (*State, error)
	Delete(ctx context.Context, id int) (bool, error)
	HasMemberships(ctx context.Context, id int) (bool, error)
}
