package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, filters repositories.ProductFilters) (*models.PagedProducts, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PagedProducts), args.Error(1)
}

func (m *MockProductRepository) SearchAll(ctx context.Context, filters repositories.ProductFilters) ([]*models.Product, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindBySKUs(ctx context.Context, skus []string) ([]*models.Product, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNames(ctx context.Context, names []string) ([]*models.Product, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportProducts_HeaderOnlyOnZeroRows(t *testing.T) {
	products := &MockProductRepository{}
	products.On("SearchAll", mock.Anything, mock.Anything).Return([]*models.Product{}, nil)

	service := NewExportService(products, &MockStagingRepository{}, utils.NewDevelopmentLogger())

	data, err := service.ExportProducts(context.Background(), repositories.ProductFilters{})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	sku, err := f.GetCellValue("Products", "A1")
	require.NoError(t, err)
	assert.Equal(t, "SKU", sku)

	last, err := f.GetCellValue("Products", "G1")
	require.NoError(t, err)
	assert.Equal(t, "SaleStartDate", last)

	name, err := f.GetCellValue("Products", "B2")
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestExportProducts_RendersRows(t *testing.T) {
	sku := "SKU-1"
	category := "Tools"
	saleDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	products := &MockProductRepository{}
	products.On("SearchAll", mock.Anything, mock.Anything).Return([]*models.Product{
		{
			ProductID:       1,
			SKU:             &sku,
			Name:            "Widget",
			Category:        &category,
			Price:           9.99,
			QuantityInStock: 5,
			SaleStartDate:   &saleDate,
		},
	}, nil)

	service := NewExportService(products, &MockStagingRepository{}, utils.NewDevelopmentLogger())

	data, err := service.ExportProducts(context.Background(), repositories.ProductFilters{})
	require.NoError(t, err)

	f := openWorkbook(t, data)

	name, err := f.GetCellValue("Products", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)

	date, err := f.GetCellValue("Products", "G2")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", date)
}

func TestExportStaging_RendersStagedRows(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()
	sku := "SKU-1"

	staging.On("ListAll", mock.Anything, sessionID).Return([]*models.StagedProduct{
		{
			StagingID:       1,
			RowNumber:       2,
			SKU:             &sku,
			Name:            "Widget",
			Price:           9.99,
			QuantityInStock: 5,
		},
	}, nil)

	service := NewExportService(&MockProductRepository{}, staging, utils.NewDevelopmentLogger())

	data, err := service.ExportStaging(context.Background(), sessionID)
	require.NoError(t, err)

	f := openWorkbook(t, data)

	name, err := f.GetCellValue("Import Data", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)
}

func TestExportStaging_HeaderOnlyOnEmptySession(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()
	staging.On("ListAll", mock.Anything, sessionID).Return([]*models.StagedProduct{}, nil)

	service := NewExportService(&MockProductRepository{}, staging, utils.NewDevelopmentLogger())

	data, err := service.ExportStaging(context.Background(), sessionID)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	header, err := f.GetCellValue("Import Data", "A1")
	require.NoError(t, err)
	assert.Equal(t, "SKU", header)
}
