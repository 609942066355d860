package catalog

import "context"

// Source supplies catalog data to the storefront.
type Source interface {
	FetchAllProducts(ctx context.Context) ([]Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
	FetchProductByID(ctx context.Context, id int) (Product, error)
	FetchProductsByCategory(ctx context.Context, category string) ([]Product, error)
}
