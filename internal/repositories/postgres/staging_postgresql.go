package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
)

type StagingPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewStagingPostgreSQL(db *gorm.DB) repositories.StagingRepository {
	return &StagingPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Stage classifies, validates and inserts rows for the session inside one
// transaction. Existing staged rows of the session are untouched, so repeated
// uploads accumulate.
func (s *StagingPostgreSQL) Stage(ctx context.Context, sessionID uuid.UUID, rows []*models.StagedProduct) (*models.ImportSummary, error) {
	var summary *models.ImportSummary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := models.ImportSession{ID: sessionID}
		if err := tx.FirstOrCreate(&session, models.ImportSession{ID: sessionID}).Error; err != nil {
			return fmt.Errorf("failed to ensure import session: %w", err)
		}

		if err := s.classifyRows(ctx, tx, rows); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, row := range rows {
			row.ImportSessionID = sessionID
			row.ModifiedAt = now
			row.ValidationErrors = ValidateStagedRow(row)
		}

		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to insert staged rows: %w", err)
			}
		}

		var err error
		summary, err = s.refreshSummary(tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *StagingPostgreSQL) ListPage(ctx context.Context, sessionID uuid.UUID, opts repositories.StagingListOptions) ([]*models.StagedProduct, int64, *models.ImportSummary, error) {
	opts.Normalize()

	query := s.db.WithContext(ctx).Model(&models.StagedProduct{}).
		Where("import_session_id = ?", sessionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count staged rows: %w", err)
	}

	var rows []*models.StagedProduct
	err := s.helpers.ApplyPagination(query, opts.PageNumber, opts.PageSize).
		Order(OrderClause(opts.SortField, opts.SortOrder, stagingSortColumns, "row_number")).
		Find(&rows).Error
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to list staged rows: %w", err)
	}

	summary, err := s.computeSummary(s.db.WithContext(ctx), sessionID)
	if err != nil {
		return nil, 0, nil, err
	}

	return rows, total, summary, nil
}

func (s *StagingPostgreSQL) ListAll(ctx context.Context, sessionID uuid.UUID) ([]*models.StagedProduct, error) {
	var rows []*models.StagedProduct
	err := s.db.WithContext(ctx).
		Where("import_session_id = ?", sessionID).
		Order("row_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staged rows: %w", err)
	}
	return rows, nil
}

func (s *StagingPostgreSQL) GetSummary(ctx context.Context, sessionID uuid.UUID) (*models.ImportSummary, error) {
	return s.computeSummary(s.db.WithContext(ctx), sessionID)
}

// UpdateRow applies edited values to one staged row, then re-validates and
// re-classifies it against the live catalog.
func (s *StagingPostgreSQL) UpdateRow(ctx context.Context, row *models.StagedProduct) (*models.StagedProduct, error) {
	var updated *models.StagedProduct

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StagedProduct
		if err := tx.First(&existing, "staging_id = ?", row.StagingID).Error; err != nil {
			return err
		}

		existing.SKU = row.SKU
		existing.Name = row.Name
		existing.Category = row.Category
		existing.Price = row.Price
		existing.QuantityInStock = row.QuantityInStock
		existing.Description = row.Description
		existing.SaleStartDate = row.SaleStartDate
		existing.ModifiedAt = time.Now().UTC()

		if err := s.classifyRows(ctx, tx, []*models.StagedProduct{&existing}); err != nil {
			return err
		}
		existing.ValidationErrors = ValidateStagedRow(&existing)

		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update staged row: %w", err)
		}

		if _, err := s.refreshSummary(tx, existing.ImportSessionID); err != nil {
			return err
		}

		updated = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRow removes one staged row. The row is loaded first so an unscoped
// delete (Nil session) still learns which session summary to refresh.
func (s *StagingPostgreSQL) DeleteRow(ctx context.Context, sessionID uuid.UUID, stagingID uint) (uuid.UUID, bool, error) {
	owner := sessionID
	deleted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("staging_id = ?", stagingID)
		if sessionID != uuid.Nil {
			query = query.Where("import_session_id = ?", sessionID)
		}

		var row models.StagedProduct
		if err := query.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load staged row: %w", err)
		}
		owner = row.ImportSessionID

		if err := tx.Delete(&models.StagedProduct{}, "staging_id = ?", row.StagingID).Error; err != nil {
			return fmt.Errorf("failed to delete staged row: %w", err)
		}

		deleted = true
		_, err := s.refreshSummary(tx, owner)
		return err
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return owner, deleted, nil
}

// Commit applies every staged row of the session to the catalog and clears
// the staged set, all in one transaction. Refuses while any row still has
// validation errors.
func (s *StagingPostgreSQL) Commit(ctx context.Context, sessionID uuid.UUID) (int, error) {
	processed := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var errorRows int64
		err := tx.Model(&models.StagedProduct{}).
			Where("import_session_id = ? AND validation_errors IS NOT NULL AND validation_errors <> ''", sessionID).
			Count(&errorRows).Error
		if err != nil {
			return fmt.Errorf("failed to count error rows: %w", err)
		}
		if errorRows > 0 {
			return repositories.ErrStagedRowsInvalid
		}

		var rows []*models.StagedProduct
		err = tx.Where("import_session_id = ?", sessionID).
			Order("row_number ASC").
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load staged rows: %w", err)
		}

		for _, row := range rows {
			if row.OperationType == models.OperationUpdate && row.ExistingProductID != nil {
				result := tx.Model(&models.Product{}).
					Where("product_id = ?", *row.ExistingProductID).
					Updates(map[string]interface{}{
						"sku":               row.SKU,
						"name":              row.Name,
						"category":          row.Category,
						"price":             row.Price,
						"quantity_in_stock": row.QuantityInStock,
						"description":       row.Description,
						"sale_start_date":   row.SaleStartDate,
					})
				if result.Error != nil {
					return fmt.Errorf("failed to apply update for row %d: %w", row.RowNumber, result.Error)
				}
				// Matched product vanished since staging; insert instead.
				if result.RowsAffected == 0 {
					if err := s.insertProduct(tx, row); err != nil {
						return err
					}
				}
			} else {
				if err := s.insertProduct(tx, row); err != nil {
					return err
				}
			}
			processed++
		}

		if err := tx.Where("import_session_id = ?", sessionID).Delete(&models.StagedProduct{}).Error; err != nil {
			return fmt.Errorf("failed to clear staged rows: %w", err)
		}
		if err := tx.Delete(&models.ImportSession{}, "id = ?", sessionID).Error; err != nil {
			return fmt.Errorf("failed to delete import session: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

func (s *StagingPostgreSQL) Clear(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var cleared int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("import_session_id = ?", sessionID).Delete(&models.StagedProduct{})
		if result.Error != nil {
			return fmt.Errorf("failed to clear staged rows: %w", result.Error)
		}
		cleared = result.RowsAffected

		if err := tx.Delete(&models.ImportSession{}, "id = ?", sessionID).Error; err != nil {
			return fmt.Errorf("failed to delete import session: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cleared, nil
}

// Helper methods

func (s *StagingPostgreSQL) insertProduct(tx *gorm.DB, row *models.StagedProduct) error {
	product := models.Product{
		SKU:             row.SKU,
		Name:            row.Name,
		Category:        row.Category,
		Price:           row.Price,
		QuantityInStock: row.QuantityInStock,
		Description:     row.Description,
		SaleStartDate:   row.SaleStartDate,
	}
	if err := tx.Create(&product).Error; err != nil {
		return fmt.Errorf("failed to insert product for row %d: %w", row.RowNumber, err)
	}
	return nil
}

// classifyRows resolves each row's operation type against the live catalog,
// reading through a product repository scoped to the transaction. A SKU match
// wins; otherwise an exact name match marks an update; anything else is an
// insert. Update rows get current-value snapshots for the review diff.
func (s *StagingPostgreSQL) classifyRows(ctx context.Context, tx *gorm.DB, rows []*models.StagedProduct) error {
	var skus []string
	var names []string
	for _, row := range rows {
		if row.SKU != nil && *row.SKU != "" {
			skus = append(skus, *row.SKU)
		}
		if row.Name != "" {
			names = append(names, row.Name)
		}
	}

	products := NewProductPostgreSQL(tx)

	bySKU := make(map[string]*models.Product)
	matched, err := products.FindBySKUs(ctx, skus)
	if err != nil {
		return fmt.Errorf("failed to match staged rows by sku: %w", err)
	}
	for _, p := range matched {
		if p.SKU != nil {
			bySKU[*p.SKU] = p
		}
	}

	byName := make(map[string]*models.Product)
	matched, err = products.FindByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to match staged rows by name: %w", err)
	}
	for _, p := range matched {
		byName[p.Name] = p
	}

	applyClassification(rows, bySKU, byName)
	return nil
}

// applyClassification marks each row Insert or Update from the catalog
// matches, snapshotting the matched product's current values on updates.
func applyClassification(rows []*models.StagedProduct, bySKU, byName map[string]*models.Product) {
	for _, row := range rows {
		var match *models.Product
		if row.SKU != nil && *row.SKU != "" {
			match = bySKU[*row.SKU]
		}
		if match == nil {
			match = byName[row.Name]
		}

		if match == nil {
			row.OperationType = models.OperationInsert
			row.ExistingProductID = nil
			row.CurrentName = nil
			row.CurrentCategory = nil
			row.CurrentPrice = nil
			row.CurrentQuantityInStock = nil
			row.CurrentDescription = nil
			row.CurrentSaleStartDate = nil
			continue
		}

		row.OperationType = models.OperationUpdate
		existingID := match.ProductID
		row.ExistingProductID = &existingID
		name := match.Name
		row.CurrentName = &name
		row.CurrentCategory = match.Category
		price := match.Price
		row.CurrentPrice = &price
		quantity := match.QuantityInStock
		row.CurrentQuantityInStock = &quantity
		row.CurrentDescription = match.Description
		row.CurrentSaleStartDate = match.SaleStartDate
	}
}

type summaryRow struct {
	TotalRows       int        `gorm:"column:total_rows"`
	NewProducts     int        `gorm:"column:new_products"`
	UpdatedProducts int        `gorm:"column:updated_products"`
	ErrorRows       int        `gorm:"column:error_rows"`
	LastModified    *time.Time `gorm:"column:last_modified"`
}

func (s *StagingPostgreSQL) computeSummary(db *gorm.DB, sessionID uuid.UUID) (*models.ImportSummary, error) {
	var row summaryRow
	err := db.Model(&models.StagedProduct{}).
		Where("import_session_id = ?", sessionID).
		Select(`COUNT(*) AS total_rows,
			COUNT(CASE WHEN operation_type = 'Insert' THEN 1 END) AS new_products,
			COUNT(CASE WHEN operation_type = 'Update' THEN 1 END) AS updated_products,
			COUNT(CASE WHEN validation_errors IS NOT NULL AND validation_errors <> '' THEN 1 END) AS error_rows,
			MAX(modified_at) AS last_modified`).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute import summary: %w", err)
	}

	return &models.ImportSummary{
		TotalRows:       row.TotalRows,
		NewProducts:     row.NewProducts,
		UpdatedProducts: row.UpdatedProducts,
		ErrorRows:       row.ErrorRows,
		LastModified:    row.LastModified,
	}, nil
}

// refreshSummary recomputes the summary and snapshots it on the session row.
func (s *StagingPostgreSQL) refreshSummary(tx *gorm.DB, sessionID uuid.UUID) (*models.ImportSummary, error) {
	summary, err := s.computeSummary(tx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary snapshot: %w", err)
	}

	err = tx.Model(&models.ImportSession{}).
		Where("id = ?", sessionID).
		Update("summary", datatypes.JSON(snapshot)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store summary snapshot: %w", err)
	}
	return summary, nil
}
