package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

// SharedHelpers holds query-building logic shared by the postgres repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// Sort field whitelists. Callers send logical field names; anything outside
// the map falls back to the default column so user input never reaches the
// ORDER BY clause directly.
var productSortColumns = map[string]string{
	"Name":            "name",
	"SKU":             "sku",
	"Category":        "category",
	"Price":           "price",
	"QuantityInStock": "quantity_in_stock",
	"SaleStartDate":   "sale_start_date",
	"CreatedAt":       "created_at",
}

var stagingSortColumns = map[string]string{
	"RowNumber":       "row_number",
	"Name":            "name",
	"SKU":             "sku",
	"Category":        "category",
	"Price":           "price",
	"QuantityInStock": "quantity_in_stock",
	"OperationType":   "operation_type",
	"ModifiedAt":      "modified_at",
}

// OrderClause resolves a logical sort field and signed order (1 asc, -1 desc)
// to a SQL order expression using the given whitelist.
func OrderClause(sortField string, sortOrder int, columns map[string]string, defaultColumn string) string {
	column, ok := columns[sortField]
	if !ok {
		column = defaultColumn
	}
	direction := "ASC"
	if sortOrder == -1 {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// ApplyPagination applies 1-based page addressing to a query.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, pageNumber, pageSize int) *gorm.DB {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return query.Offset((pageNumber - 1) * pageSize).Limit(pageSize)
}

// ValidateStagedRow checks a staged row against catalog rules and returns the
// joined failure messages, or nil when the row is clean.
func ValidateStagedRow(row *models.StagedProduct) *string {
	var problems []string

	if strings.TrimSpace(row.Name) == "" {
		problems = append(problems, "Name is required")
	}
	if row.Price < 0 {
		problems = append(problems, "Price cannot be negative")
	}
	if row.QuantityInStock < 0 {
		problems = append(problems, "Quantity cannot be negative")
	}
	if row.SKU != nil && len(*row.SKU) > 50 {
		problems = append(problems, "SKU cannot exceed 50 characters")
	}
	if len(row.Name) > 200 {
		problems = append(problems, "Name cannot exceed 200 characters")
	}

	if len(problems) == 0 {
		return nil
	}
	joined := strings.Join(problems, "; ")
	return &joined
}
