package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DmitryBilevich/product-sales-service/internal/cache"
	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
)

// MockStagingRepository is a mock implementation of StagingRepository
type MockStagingRepository struct {
	mock.Mock
}

func (m *MockStagingRepository) Stage(ctx context.Context, sessionID uuid.UUID, rows []*models.StagedProduct) (*models.ImportSummary, error) {
	args := m.Called(ctx, sessionID, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportSummary), args.Error(1)
}

func (m *MockStagingRepository) ListPage(ctx context.Context, sessionID uuid.UUID, opts repositories.StagingListOptions) ([]*models.StagedProduct, int64, *models.ImportSummary, error) {
	args := m.Called(ctx, sessionID, opts)
	if args.Get(0) == nil {
		return nil, 0, nil, args.Error(3)
	}
	return args.Get(0).([]*models.StagedProduct), args.Get(1).(int64), args.Get(2).(*models.ImportSummary), args.Error(3)
}

func (m *MockStagingRepository) ListAll(ctx context.Context, sessionID uuid.UUID) ([]*models.StagedProduct, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StagedProduct), args.Error(1)
}

func (m *MockStagingRepository) GetSummary(ctx context.Context, sessionID uuid.UUID) (*models.ImportSummary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportSummary), args.Error(1)
}

func (m *MockStagingRepository) UpdateRow(ctx context.Context, row *models.StagedProduct) (*models.StagedProduct, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StagedProduct), args.Error(1)
}

func (m *MockStagingRepository) DeleteRow(ctx context.Context, sessionID uuid.UUID, stagingID uint) (uuid.UUID, bool, error) {
	args := m.Called(ctx, sessionID, stagingID)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockStagingRepository) Commit(ctx context.Context, sessionID uuid.UUID) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockStagingRepository) Clear(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheService is a mock implementation of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func newImportServiceForTest(staging *MockStagingRepository) ImportService {
	return NewImportService(staging, nil, nil, utils.NewDevelopmentLogger(), 5*1024*1024)
}

func newImportServiceWithCache(staging *MockStagingRepository, cacheService *MockCacheService) ImportService {
	return NewImportService(staging, cacheService, nil, utils.NewDevelopmentLogger(), 5*1024*1024)
}

const importCSV = "SKU,Name,Category,Price,QuantityInStock,Description,SaleStartDate\n" +
	"SKU-1,Widget,Tools,9.99,5,Handy widget,2024-03-15\n" +
	"SKU-2,Gadget,Tools,bad-price,bad-qty,,\n"

func TestUpload_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		filename string
		content  string
		message  string
	}{
		{
			name:     "empty file",
			size:     0,
			filename: "products.csv",
			message:  "No file uploaded",
		},
		{
			name:     "oversize file",
			size:     6 * 1024 * 1024,
			filename: "products.csv",
			content:  importCSV,
			message:  "File size exceeds 5MB limit",
		},
		{
			name:     "unsupported extension",
			size:     10,
			filename: "products.txt",
			content:  "Name\nWidget\n",
			message:  "Only Excel (.xlsx, .xls) and CSV files are supported",
		},
		{
			name:     "header only file",
			size:     60,
			filename: "products.csv",
			content:  "SKU,Name,Category,Price,QuantityInStock,Description,SaleStartDate\n",
			message:  "No valid data found in file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staging := &MockStagingRepository{}
			service := newImportServiceForTest(staging)

			result, err := service.Upload(context.Background(), strings.NewReader(tt.content), tt.size, tt.filename, nil)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)

			staging.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpload_SizeMessageTracksConfiguredLimit(t *testing.T) {
	staging := &MockStagingRepository{}
	service := NewImportService(staging, nil, nil, utils.NewDevelopmentLogger(), 2*1024*1024)

	result, err := service.Upload(context.Background(), strings.NewReader(importCSV), 3*1024*1024, "products.csv", nil)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "File size exceeds 2MB limit", result.Message)

	staging.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_StagesNormalizedRows(t *testing.T) {
	staging := &MockStagingRepository{}
	summary := &models.ImportSummary{TotalRows: 2, NewProducts: 2}

	staging.On("Stage", mock.Anything, mock.Anything, mock.MatchedBy(func(rows []*models.StagedProduct) bool {
		if len(rows) != 2 {
			return false
		}
		first, second := rows[0], rows[1]
		wantDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		return first.RowNumber == 2 &&
			first.Name == "Widget" &&
			first.Price == 9.99 &&
			first.QuantityInStock == 5 &&
			first.SaleStartDate != nil && first.SaleStartDate.Equal(wantDate) &&
			// Unparseable numeric cells normalize to zero.
			second.Price == 0 &&
			second.QuantityInStock == 0 &&
			second.SaleStartDate == nil
	})).Return(summary, nil)

	service := newImportServiceForTest(staging)

	result, err := service.Upload(context.Background(), strings.NewReader(importCSV), int64(len(importCSV)), "products.csv", nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "File processed successfully", result.Message)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, summary, result.Summary)
	require.NotNil(t, result.ImportSessionID)
	assert.NotEqual(t, uuid.Nil, *result.ImportSessionID)

	staging.AssertExpectations(t)
}

func TestUpload_ReusesProvidedSession(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()

	staging.On("Stage", mock.Anything, sessionID, mock.Anything).
		Return(&models.ImportSummary{TotalRows: 2}, nil)

	service := newImportServiceForTest(staging)

	result, err := service.Upload(context.Background(), strings.NewReader(importCSV), int64(len(importCSV)), "products.csv", &sessionID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.NotNil(t, result.ImportSessionID)
	assert.Equal(t, sessionID, *result.ImportSessionID)

	staging.AssertExpectations(t)
}

func TestCommit_RefusesWhileRowsHaveErrors(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()

	staging.On("GetSummary", mock.Anything, sessionID).
		Return(&models.ImportSummary{TotalRows: 5, NewProducts: 3, ErrorRows: 2}, nil)

	service := newImportServiceForTest(staging)

	result, err := service.Commit(context.Background(), sessionID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Cannot process import: 2 rows have validation errors", result.Message)

	staging.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestCommit_RefusesEmptySession(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()

	staging.On("GetSummary", mock.Anything, sessionID).
		Return(&models.ImportSummary{}, nil)

	service := newImportServiceForTest(staging)

	result, err := service.Commit(context.Background(), sessionID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "No data to process", result.Message)

	staging.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestCommit_AppliesCleanSession(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()

	staging.On("GetSummary", mock.Anything, sessionID).
		Return(&models.ImportSummary{TotalRows: 5, NewProducts: 3, UpdatedProducts: 2}, nil)
	staging.On("Commit", mock.Anything, sessionID).Return(5, nil)

	service := newImportServiceForTest(staging)

	result, err := service.Commit(context.Background(), sessionID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Import completed successfully", result.Message)
	assert.Equal(t, 5, result.ProcessedCount)

	staging.AssertExpectations(t)
}

func TestCommit_ServesSummaryFromCache(t *testing.T) {
	staging := &MockStagingRepository{}
	cacheService := &MockCacheService{}
	sessionID := uuid.New()

	cacheService.On("Get", mock.Anything, "import:summary:"+sessionID.String(), mock.Anything).
		Run(func(args mock.Arguments) {
			summary := args.Get(2).(*models.ImportSummary)
			*summary = models.ImportSummary{TotalRows: 4, NewProducts: 2, ErrorRows: 2}
		}).
		Return(nil)

	service := newImportServiceWithCache(staging, cacheService)

	result, err := service.Commit(context.Background(), sessionID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Cannot process import: 2 rows have validation errors", result.Message)

	// A cache hit answers the gate without touching the store.
	staging.AssertNotCalled(t, "GetSummary", mock.Anything, mock.Anything)
	staging.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	cacheService.AssertExpectations(t)
}

func TestCommit_FallsBackToStoreOnCacheMiss(t *testing.T) {
	staging := &MockStagingRepository{}
	cacheService := &MockCacheService{}
	sessionID := uuid.New()
	key := "import:summary:" + sessionID.String()

	cacheService.On("Get", mock.Anything, key, mock.Anything).Return(cache.ErrCacheMiss)
	cacheService.On("Set", mock.Anything, key, mock.Anything, summaryCacheTTL).Return(nil)
	cacheService.On("Delete", mock.Anything, key).Return(nil)

	staging.On("GetSummary", mock.Anything, sessionID).
		Return(&models.ImportSummary{TotalRows: 3, NewProducts: 3}, nil)
	staging.On("Commit", mock.Anything, sessionID).Return(3, nil)

	service := newImportServiceWithCache(staging, cacheService)

	result, err := service.Commit(context.Background(), sessionID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ProcessedCount)

	staging.AssertExpectations(t)
	cacheService.AssertExpectations(t)
}

func TestUpdateRow_NotFound(t *testing.T) {
	staging := &MockStagingRepository{}
	staging.On("UpdateRow", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	service := newImportServiceForTest(staging)

	_, err := service.UpdateRow(context.Background(), UpdateStagingRequest{StagingID: 42, Name: "Widget"})
	assert.ErrorIs(t, err, ErrStagingRowNotFound)
}

func TestDeleteRow_NotFound(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()
	staging.On("DeleteRow", mock.Anything, sessionID, uint(42)).Return(uuid.Nil, false, nil)

	service := newImportServiceForTest(staging)

	err := service.DeleteRow(context.Background(), sessionID, 42)
	assert.ErrorIs(t, err, ErrStagingRowNotFound)
}

func TestDeleteRow_WithoutSessionInvalidatesOwningSession(t *testing.T) {
	staging := &MockStagingRepository{}
	cacheService := &MockCacheService{}
	owner := uuid.New()

	staging.On("DeleteRow", mock.Anything, uuid.Nil, uint(7)).Return(owner, true, nil)
	// The cache entry of the session the row belonged to gets dropped even
	// though the caller never named the session.
	cacheService.On("Delete", mock.Anything, "import:summary:"+owner.String()).Return(nil)

	service := newImportServiceWithCache(staging, cacheService)

	err := service.DeleteRow(context.Background(), uuid.Nil, 7)
	require.NoError(t, err)

	staging.AssertExpectations(t)
	cacheService.AssertExpectations(t)
}

func TestClear_ReportsClearedCount(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()
	staging.On("Clear", mock.Anything, sessionID).Return(int64(7), nil)

	service := newImportServiceForTest(staging)

	result, err := service.Clear(context.Background(), sessionID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Import data cleared successfully", result.Message)
	assert.Equal(t, 7, result.ProcessedCount)
}

func TestReviewPage_ReturnsRowsAndSummary(t *testing.T) {
	staging := &MockStagingRepository{}
	sessionID := uuid.New()

	rows := []*models.StagedProduct{
		{StagingID: 1, RowNumber: 2, Name: "Widget", OperationType: models.OperationInsert},
	}
	summary := &models.ImportSummary{TotalRows: 1, NewProducts: 1}

	staging.On("ListPage", mock.Anything, sessionID, mock.Anything).
		Return(rows, int64(1), summary, nil)

	service := newImportServiceForTest(staging)

	page, err := service.ReviewPage(context.Background(), sessionID, repositories.StagingListOptions{})
	require.NoError(t, err)

	assert.Equal(t, rows, page.Items)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, summary, page.Summary)
}
