package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
)

type ProductPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewProductPostgreSQL(db *gorm.DB) repositories.ProductRepository {
	return &ProductPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (p *ProductPostgreSQL) Create(ctx context.Context, product *models.Product) error {
	if err := p.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (p *ProductPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := p.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *ProductPostgreSQL) Update(ctx context.Context, product *models.Product) error {
	result := p.db.WithContext(ctx).Model(&models.Product{}).
		Where("product_id = ?", product.ProductID).
		Updates(map[string]interface{}{
			"sku":               product.SKU,
			"name":              product.Name,
			"category":          product.Category,
			"price":             product.Price,
			"quantity_in_stock": product.QuantityInStock,
			"description":       product.Description,
			"sale_start_date":   product.SaleStartDate,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *ProductPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := p.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Search runs a filtered, paginated catalog query.
func (p *ProductPostgreSQL) Search(ctx context.Context, filters repositories.ProductFilters) (*models.PagedProducts, error) {
	filters.Normalize()

	query := p.applyFilters(p.db.WithContext(ctx).Model(&models.Product{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var items []*models.Product
	err := p.helpers.ApplyPagination(query, filters.PageNumber, filters.PageSize).
		Order(OrderClause(filters.SortField, filters.SortOrder, productSortColumns, "name")).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return &models.PagedProducts{Items: items, TotalCount: total}, nil
}

// SearchAll returns every matching product without pagination, ordered like
// Search would order its first page.
func (p *ProductPostgreSQL) SearchAll(ctx context.Context, filters repositories.ProductFilters) ([]*models.Product, error) {
	filters.Normalize()

	var items []*models.Product
	err := p.applyFilters(p.db.WithContext(ctx).Model(&models.Product{}), filters).
		Order(OrderClause(filters.SortField, filters.SortOrder, productSortColumns, "name")).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}
	return items, nil
}

func (p *ProductPostgreSQL) ExistsBySKU(ctx context.Context, sku string, excludeID *uint) (bool, error) {
	query := p.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("product_id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sku existence: %w", err)
	}
	return count > 0, nil
}

func (p *ProductPostgreSQL) FindBySKUs(ctx context.Context, skus []string) ([]*models.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var products []*models.Product
	err := p.db.WithContext(ctx).Where("sku IN ?", skus).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by sku: %w", err)
	}
	return products, nil
}

func (p *ProductPostgreSQL) FindByNames(ctx context.Context, names []string) ([]*models.Product, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var products []*models.Product
	err := p.db.WithContext(ctx).Where("name IN ?", names).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by name: %w", err)
	}
	return products, nil
}

// applyFilters applies search filters to a query
func (p *ProductPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ProductFilters) *gorm.DB {
	if filters.Name != nil && *filters.Name != "" {
		query = query.Where("name ILIKE ?", "%"+*filters.Name+"%")
	}
	if filters.SKU != nil && *filters.SKU != "" {
		query = query.Where("sku ILIKE ?", "%"+*filters.SKU+"%")
	}
	if len(filters.Categories) > 0 {
		query = query.Where("category IN ?", filters.Categories)
	}
	if filters.PriceMin != nil {
		query = query.Where("price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("price <= ?", *filters.PriceMax)
	}
	if filters.SaleStartDateMin != nil {
		query = query.Where("sale_start_date >= ?", *filters.SaleStartDateMin)
	}
	if filters.SaleStartDateMax != nil {
		query = query.Where("sale_start_date <= ?", *filters.SaleStartDateMax)
	}
	if len(filters.StockRanges) > 0 {
		ranges := p.db.Session(&gorm.Session{NewDB: true})
		for i, sr := range filters.StockRanges {
			band := p.db.Session(&gorm.Session{NewDB: true})
			if sr.Min != nil {
				band = band.Where("quantity_in_stock >= ?", *sr.Min)
			}
			if sr.Max != nil {
				band = band.Where("quantity_in_stock <= ?", *sr.Max)
			}
			if i == 0 {
				ranges = ranges.Where(band)
			} else {
				ranges = ranges.Or(band)
			}
		}
		query = query.Where(ranges)
	}
	return query
}
