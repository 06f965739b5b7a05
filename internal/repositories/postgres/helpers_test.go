package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "row_number ASC", OrderClause("RowNumber", 1, stagingSortColumns, "row_number"))
	assert.Equal(t, "price DESC", OrderClause("Price", -1, stagingSortColumns, "row_number"))
	assert.Equal(t, "name ASC", OrderClause("Name", 0, productSortColumns, "name"))
}

func TestOrderClause_UnknownFieldFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "row_number ASC", OrderClause("modified_at; DROP TABLE products", 1, stagingSortColumns, "row_number"))
	assert.Equal(t, "name DESC", OrderClause("", -1, productSortColumns, "name"))
}

func TestValidateStagedRow_CleanRow(t *testing.T) {
	sku := "SKU-1"
	row := &models.StagedProduct{
		SKU:             &sku,
		Name:            "Widget",
		Price:           9.99,
		QuantityInStock: 5,
	}

	assert.Nil(t, ValidateStagedRow(row))
}

func TestValidateStagedRow_CollectsAllProblems(t *testing.T) {
	row := &models.StagedProduct{
		Name:            "   ",
		Price:           -1,
		QuantityInStock: -3,
	}

	errs := ValidateStagedRow(row)
	assert.NotNil(t, errs)
	assert.Equal(t, "Name is required; Price cannot be negative; Quantity cannot be negative", *errs)
}

func TestValidateStagedRow_LengthLimits(t *testing.T) {
	longSKU := make([]byte, 51)
	for i := range longSKU {
		longSKU[i] = 'x'
	}
	sku := string(longSKU)

	row := &models.StagedProduct{
		SKU:             &sku,
		Name:            "Widget",
		Price:           1,
		QuantityInStock: 1,
	}

	errs := ValidateStagedRow(row)
	assert.NotNil(t, errs)
	assert.Equal(t, "SKU cannot exceed 50 characters", *errs)
}
