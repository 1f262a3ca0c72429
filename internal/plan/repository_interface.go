package plan

import "context"

type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	DescriptionExists(ctx context.Context, description string, excludeID int) (bool, error)
	Create(ctx context.Context, days int, price float64, description string) (*Plan, error)
	Update(ctx context.Context, id int, days *int, price *float64, description *string) (*Plan, error)
	Delete(ctx context.Context, id int) (bool, error)
	HasMemberships(ctx context.Context, id int) (bool, error)
}
