package taskcatalog

import "context"

type Repository interface {
	// List returns all templates in catalog order.
	List(ctx context.Context) ([]*Template, error)
	Get(ctx context.Context, id int) (*Template, error)
}
