package repositories

import (
	"context"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

// ProductRepository interface for catalog operations
type ProductRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	Search(ctx context.Context, filters ProductFilters) (*models.PagedProducts, error)

	// SearchAll returns every product matching the filters, unpaged, for
	// export rendering.
	SearchAll(ctx context.Context, filters ProductFilters) ([]*models.Product, error)

	// Validation helpers
	ExistsBySKU(ctx context.Context, sku string, excludeID *uint) (bool, error)

	// Import support: bulk lookups used when classifying staged rows
	FindBySKUs(ctx context.Context, skus []string) ([]*models.Product, error)
	FindByNames(ctx context.Context, names []string) ([]*models.Product, error)
}
