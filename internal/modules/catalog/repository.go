package catalog

import "context"

// Repository defines catalog data storage.
type Repository interface {
	CreateCategory(ctx context.Context, c *ProductCategory) error
	ListCategories(ctx context.Context) ([]*ProductCategory, error)

	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, categoryID string, activeOnly bool) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
}
