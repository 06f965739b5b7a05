package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DmitryBilevich/product-sales-service/internal/cache"
	"github.com/DmitryBilevich/product-sales-service/internal/events"
	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
)

const summaryCacheTTL = 30 * time.Minute

// ImportResult is the outcome of an import operation. Expected failures
// (bad file, validation errors blocking commit) come back as Success=false
// with a user-facing Message; only infrastructure faults surface as errors.
type ImportResult struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	ProcessedCount  int                   `json:"processedCount"`
	Summary         *models.ImportSummary `json:"summary,omitempty"`
	ImportSessionID *uuid.UUID            `json:"importSessionId,omitempty"`
}

// StagingPage is one review page of staged rows.
type StagingPage struct {
	Items      []*models.StagedProduct `json:"items"`
	TotalCount int64                   `json:"totalCount"`
	Summary    *models.ImportSummary   `json:"summary"`
}

// UpdateStagingRequest carries the edited values for one staged row.
type UpdateStagingRequest struct {
	StagingID       uint       `json:"stagingId" validate:"required"`
	SKU             *string    `json:"sku" validate:"omitempty,max=50"`
	Name            string     `json:"name" validate:"required,max=200"`
	Category        *string    `json:"category" validate:"omitempty,max=100"`
	Price           float64    `json:"price"`
	QuantityInStock int        `json:"quantityInStock"`
	Description     *string    `json:"description"`
	SaleStartDate   *time.Time `json:"saleStartDate"`
}

// ImportService drives the staged import pipeline: upload and stage, review,
// edit, commit or discard.
type ImportService interface {
	Upload(ctx context.Context, file io.Reader, size int64, filename string, sessionID *uuid.UUID) (*ImportResult, error)
	ReviewPage(ctx context.Context, sessionID uuid.UUID, opts repositories.StagingListOptions) (*StagingPage, error)
	UpdateRow(ctx context.Context, req UpdateStagingRequest) (*models.StagedProduct, error)
	DeleteRow(ctx context.Context, sessionID uuid.UUID, stagingID uint) error
	Commit(ctx context.Context, sessionID uuid.UUID) (*ImportResult, error)
	Clear(ctx context.Context, sessionID uuid.UUID) (*ImportResult, error)
}

type importService struct {
	staging        repositories.StagingRepository
	cache          cache.CacheService
	publisher      events.EventPublisher
	logger         utils.Logger
	maxUploadBytes int64
}

func NewImportService(
	staging repositories.StagingRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
	maxUploadBytes int64,
) ImportService {
	return &importService{
		staging:        staging,
		cache:          cacheService,
		publisher:      publisher,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

var allowedImportExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// Upload parses the file, normalizes its cells and stages the rows. A nil
// sessionID starts a fresh session; passing an existing one accumulates rows
// into it.
func (s *importService) Upload(ctx context.Context, file io.Reader, size int64, filename string, sessionID *uuid.UUID) (*ImportResult, error) {
	if file == nil || size == 0 {
		return &ImportResult{Success: false, Message: "No file uploaded"}, nil
	}
	if size > s.maxUploadBytes {
		return &ImportResult{Success: false, Message: fmt.Sprintf("File size exceeds %dMB limit", s.maxUploadBytes/(1024*1024))}, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImportExtensions[ext] {
		return &ImportResult{Success: false, Message: "Only Excel (.xlsx, .xls) and CSV files are supported"}, nil
	}

	session := uuid.New()
	if sessionID != nil {
		session = *sessionID
	}

	rows, err := parseImportFile(filename, file)
	if err != nil {
		s.logger.WarnContext(ctx, "Import file parse failed", "filename", filename, "error", err)
		return &ImportResult{Success: false, Message: fmt.Sprintf("Error processing file: %s", err.Error())}, nil
	}
	if len(rows) == 0 {
		return &ImportResult{Success: false, Message: "No valid data found in file"}, nil
	}

	staged := make([]*models.StagedProduct, 0, len(rows))
	for _, row := range rows {
		staged = append(staged, &models.StagedProduct{
			RowNumber:       row.RowNumber,
			SKU:             row.SKU,
			Name:            row.Name,
			Category:        row.Category,
			Price:           ParsePrice(row.Price),
			QuantityInStock: ParseQuantity(row.QuantityInStock),
			Description:     row.Description,
			SaleStartDate:   ParseSaleDate(row.SaleStartDate),
		})
	}

	summary, err := s.staging.Stage(ctx, session, staged)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to stage import rows", "session_id", session, "error", err)
		return &ImportResult{Success: false, Message: fmt.Sprintf("Error processing file: %s", err.Error())}, nil
	}

	s.cacheSummary(ctx, session, summary)
	s.publish(ctx, events.NewImportEvent(events.ImportStaged, session, len(staged)))

	return &ImportResult{
		Success:         true,
		Message:         "File processed successfully",
		ProcessedCount:  len(staged),
		Summary:         summary,
		ImportSessionID: &session,
	}, nil
}

func (s *importService) ReviewPage(ctx context.Context, sessionID uuid.UUID, opts repositories.StagingListOptions) (*StagingPage, error) {
	rows, total, summary, err := s.staging.ListPage(ctx, sessionID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load staging page: %w", err)
	}

	s.cacheSummary(ctx, sessionID, summary)

	return &StagingPage{
		Items:      rows,
		TotalCount: total,
		Summary:    summary,
	}, nil
}

func (s *importService) UpdateRow(ctx context.Context, req UpdateStagingRequest) (*models.StagedProduct, error) {
	row := &models.StagedProduct{
		StagingID:       req.StagingID,
		SKU:             req.SKU,
		Name:            req.Name,
		Category:        req.Category,
		Price:           req.Price,
		QuantityInStock: req.QuantityInStock,
		Description:     req.Description,
		SaleStartDate:   req.SaleStartDate,
	}

	updated, err := s.staging.UpdateRow(ctx, row)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStagingRowNotFound
		}
		return nil, fmt.Errorf("failed to update staged row: %w", err)
	}

	s.invalidateSummary(ctx, updated.ImportSessionID)
	s.publish(ctx, events.NewImportEvent(events.ImportRowUpdated, updated.ImportSessionID, 1))

	return updated, nil
}

// DeleteRow removes one staged row. A Nil sessionID addresses the row by
// staging id alone; the store reports which session the row belonged to so
// the cache and event still target the right session.
func (s *importService) DeleteRow(ctx context.Context, sessionID uuid.UUID, stagingID uint) error {
	owner, deleted, err := s.staging.DeleteRow(ctx, sessionID, stagingID)
	if err != nil {
		return fmt.Errorf("failed to delete staged row: %w", err)
	}
	if !deleted {
		return ErrStagingRowNotFound
	}

	s.invalidateSummary(ctx, owner)
	s.publish(ctx, events.NewImportEvent(events.ImportRowDeleted, owner, 1))

	return nil
}

// Commit applies the staged rows to the catalog. It refuses while any row
// carries validation errors, without touching the store.
func (s *importService) Commit(ctx context.Context, sessionID uuid.UUID) (*ImportResult, error) {
	summary, err := s.loadSummary(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load import summary: %w", err)
	}
	if summary.TotalRows == 0 {
		return &ImportResult{Success: false, Message: "No data to process", Summary: summary}, nil
	}
	if summary.ErrorRows > 0 {
		return &ImportResult{
			Success: false,
			Message: fmt.Sprintf("Cannot process import: %d rows have validation errors", summary.ErrorRows),
			Summary: summary,
		}, nil
	}

	processed, err := s.staging.Commit(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrStagedRowsInvalid) {
			return &ImportResult{Success: false, Message: "Cannot process import: rows have validation errors"}, nil
		}
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	s.invalidateSummary(ctx, sessionID)
	s.publish(ctx, events.NewImportEvent(events.ImportCommitted, sessionID, processed))

	return &ImportResult{
		Success:        true,
		Message:        "Import completed successfully",
		ProcessedCount: processed,
	}, nil
}

func (s *importService) Clear(ctx context.Context, sessionID uuid.UUID) (*ImportResult, error) {
	cleared, err := s.staging.Clear(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear import session: %w", err)
	}

	s.invalidateSummary(ctx, sessionID)
	s.publish(ctx, events.NewImportEvent(events.ImportCleared, sessionID, int(cleared)))

	return &ImportResult{
		Success:        true,
		Message:        "Import data cleared successfully",
		ProcessedCount: int(cleared),
	}, nil
}

// Helper methods

func summaryCacheKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("import:summary:%s", sessionID)
}

// loadSummary serves the session summary from cache when present, falling
// back to the store and re-priming the cache on a miss. Every staging
// mutation either refreshes or invalidates the cached entry, so a hit is
// never stale.
func (s *importService) loadSummary(ctx context.Context, sessionID uuid.UUID) (*models.ImportSummary, error) {
	if s.cache != nil {
		var cached models.ImportSummary
		err := s.cache.Get(ctx, summaryCacheKey(sessionID), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "Failed to read cached import summary", "session_id", sessionID, "error", err)
		}
	}

	summary, err := s.staging.GetSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.cacheSummary(ctx, sessionID, summary)
	return summary, nil
}

func (s *importService) cacheSummary(ctx context.Context, sessionID uuid.UUID, summary *models.ImportSummary) {
	if s.cache == nil || summary == nil {
		return
	}
	if err := s.cache.Set(ctx, summaryCacheKey(sessionID), summary, summaryCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache import summary", "session_id", sessionID, "error", err)
	}
}

func (s *importService) invalidateSummary(ctx context.Context, sessionID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(sessionID)); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate import summary cache", "session_id", sessionID, "error", err)
	}
}

// publish sends a lifecycle event. Publishing problems are logged and never
// fail the operation that triggered them.
func (s *importService) publish(ctx context.Context, event *events.ImportEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishImportEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish import event",
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
	}
}
