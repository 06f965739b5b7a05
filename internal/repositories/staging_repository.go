package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

// ErrStagedRowsInvalid is returned by Commit while any staged row of the
// session still carries validation errors.
var ErrStagedRowsInvalid = errors.New("staged rows have validation errors")

// StagingRepository is the import staging store. Rows arrive normalized; the
// store classifies each one against the live catalog (SKU match first, exact
// name match second), records validation errors, and keeps a per-session
// summary current.
type StagingRepository interface {
	// Stage classifies, validates and inserts rows for the session. Repeated
	// calls for the same session are additive.
	Stage(ctx context.Context, sessionID uuid.UUID, rows []*models.StagedProduct) (*models.ImportSummary, error)

	// ListPage returns one review page plus the total row count and the
	// current session summary.
	ListPage(ctx context.Context, sessionID uuid.UUID, opts StagingListOptions) ([]*models.StagedProduct, int64, *models.ImportSummary, error)

	// ListAll returns every staged row of the session ordered by row number,
	// for export rendering.
	ListAll(ctx context.Context, sessionID uuid.UUID) ([]*models.StagedProduct, error)

	GetSummary(ctx context.Context, sessionID uuid.UUID) (*models.ImportSummary, error)

	// UpdateRow applies edited field values to one staged row, then
	// re-validates and re-classifies it. Returns ErrStagingRowNotFound via
	// gorm.ErrRecordNotFound semantics when the row does not exist.
	UpdateRow(ctx context.Context, row *models.StagedProduct) (*models.StagedProduct, error)

	// DeleteRow removes one staged row. A Nil sessionID addresses the row by
	// staging id alone; otherwise the delete is scoped to the session. Returns
	// the session the row belonged to and whether a row was actually deleted.
	DeleteRow(ctx context.Context, sessionID uuid.UUID, stagingID uint) (uuid.UUID, bool, error)

	// Commit atomically applies every staged row to the catalog (Insert rows
	// create products, Update rows overwrite the matched product) and clears
	// the session. Refuses when any row still has validation errors.
	Commit(ctx context.Context, sessionID uuid.UUID) (int, error)

	// Clear discards all staged rows of the session without touching the
	// catalog. Returns the number of rows removed.
	Clear(ctx context.Context, sessionID uuid.UUID) (int64, error)
}
