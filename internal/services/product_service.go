package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/DmitryBilevich/product-sales-service/internal/errors"
	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
	"github.com/DmitryBilevich/product-sales-service/internal/validator"
)

// ProductService is the catalog command/query surface the import pipeline
// commits into.
type ProductService interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, filters repositories.ProductFilters) (*models.PagedProducts, error)
	CheckSKU(ctx context.Context, sku string, excludeID *uint) (bool, error)
}

type productService struct {
	products  repositories.ProductRepository
	validator *validator.Validator
	logger    utils.Logger
}

func NewProductService(
	products repositories.ProductRepository,
	v *validator.Validator,
	logger utils.Logger,
) ProductService {
	return &productService{
		products:  products,
		validator: v,
		logger:    logger,
	}
}

func (s *productService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := s.validator.ValidateStruct(product); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	if product.SKU != nil && *product.SKU != "" {
		exists, err := s.products.ExistsBySKU(ctx, *product.SKU, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check sku uniqueness: %w", err)
		}
		if exists {
			return nil, ErrDuplicateSKU
		}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.InfoContext(ctx, "Product created", "product_id", product.ProductID, "name", product.Name)
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := s.validator.ValidateStruct(product); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	if product.SKU != nil && *product.SKU != "" {
		excludeID := product.ProductID
		exists, err := s.products.ExistsBySKU(ctx, *product.SKU, &excludeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check sku uniqueness: %w", err)
		}
		if exists {
			return nil, ErrDuplicateSKU
		}
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetByID(ctx, product.ProductID)
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) Search(ctx context.Context, filters repositories.ProductFilters) (*models.PagedProducts, error) {
	if err := s.validator.ValidateStruct(&filters); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}
	return s.products.Search(ctx, filters)
}

// CheckSKU reports whether a SKU is already taken, optionally ignoring one
// product id (the edit form's own record).
func (s *productService) CheckSKU(ctx context.Context, sku string, excludeID *uint) (bool, error) {
	if sku == "" {
		return false, nil
	}
	return s.products.ExistsBySKU(ctx, sku, excludeID)
}
