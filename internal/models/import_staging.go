package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ImportOperationType string

const (
	OperationInsert ImportOperationType = "Insert"
	OperationUpdate ImportOperationType = "Update"
)

// ImportRow is one spreadsheet line as parsed, before any normalization.
// Price, QuantityInStock and SaleStartDate stay textual here; parsing them is
// deferred so a bad cell never aborts the file (validation flags it later).
type ImportRow struct {
	RowNumber       int     `json:"rowNumber"`
	SKU             *string `json:"sku"`
	Name            string  `json:"name"`
	Category        *string `json:"category"`
	Price           string  `json:"price"`
	QuantityInStock string  `json:"quantityInStock"`
	Description     *string `json:"description"`
	SaleStartDate   *string `json:"saleStartDate"`
}

// StagedProduct is an ImportRow after normalization and server-side
// validation/diffing, held in the staging area pending review. The Current*
// fields snapshot the live catalog values when OperationType is Update so the
// review UI can render a diff.
type StagedProduct struct {
	StagingID       uint                `json:"stagingId" gorm:"primaryKey;column:staging_id"`
	ImportSessionID uuid.UUID           `json:"importSessionId" gorm:"type:uuid;not null;index"`
	RowNumber       int                 `json:"rowNumber" gorm:"not null"`
	OperationType   ImportOperationType `json:"operationType" gorm:"size:10;not null;default:Insert"`

	SKU             *string    `json:"sku" gorm:"column:sku;size:50"`
	Name            string     `json:"name" gorm:"not null;size:200"`
	Category        *string    `json:"category" gorm:"size:100"`
	Price           float64    `json:"price" gorm:"not null;default:0"`
	QuantityInStock int        `json:"quantityInStock" gorm:"not null;default:0"`
	Description     *string    `json:"description" gorm:"type:text"`
	SaleStartDate   *time.Time `json:"saleStartDate"`

	ExistingProductID *uint   `json:"existingProductId" gorm:"index"`
	ValidationErrors  *string `json:"validationErrors" gorm:"type:text"`

	CurrentName            *string    `json:"currentName" gorm:"size:200"`
	CurrentCategory        *string    `json:"currentCategory" gorm:"size:100"`
	CurrentPrice           *float64   `json:"currentPrice"`
	CurrentQuantityInStock *int       `json:"currentQuantityInStock"`
	CurrentDescription     *string    `json:"currentDescription" gorm:"type:text"`
	CurrentSaleStartDate   *time.Time `json:"currentSaleStartDate"`

	ModifiedAt time.Time `json:"modifiedAt" gorm:"not null;index"`
}

func (StagedProduct) TableName() string {
	return "product_import_staging"
}

// ImportSession groups one import attempt's staged rows. Summary is a jsonb
// snapshot of the latest ImportSummary, refreshed on every staging mutation.
type ImportSession struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	Summary   datatypes.JSON `json:"summary" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (ImportSession) TableName() string {
	return "product_import_sessions"
}

// ImportSummary aggregates the staged rows of one session.
type ImportSummary struct {
	TotalRows       int        `json:"totalRows"`
	NewProducts     int        `json:"newProducts"`
	UpdatedProducts int        `json:"updatedProducts"`
	ErrorRows       int        `json:"errorRows"`
	LastModified    *time.Time `json:"lastModified,omitempty"`
}
