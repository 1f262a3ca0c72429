package paymentmethod

import "context"

type Repository interface {
	List(ctx context.Context) ([]PaymentMethod, error)
	GetByID(ctx context.Context, id int) (*PaymentMethod, error)
	NameExists(ctx context.Context, name string, excludeID int) (bool, error)
	Create(ctx context.Context, name string) (*PaymentMethod, error)
	Update(ctx context.Context, id int, name string) (*PaymentMethod, error)
	Delete(ctx context.Context, id int) (bool, error)
	HasMemberships(ctx context.Context, id int) (bool, error)
}
