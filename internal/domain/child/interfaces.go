package child

import "context"

// Repository provides persistence for children.
type Repository interface {
	Create(ctx context.Context, c *Child) error
	Get(ctx context.Context, id string) (*Child, error)
	List(ctx context.Context) ([]Child, error)
	Delete(ctx context.Context, id string) error
}
