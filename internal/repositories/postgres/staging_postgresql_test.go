package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

func stagedRow(sku *string, name string) *models.StagedProduct {
	return &models.StagedProduct{SKU: sku, Name: name}
}

func catalogProduct(id uint, sku *string, name string) *models.Product {
	category := "Tools"
	description := "Existing description"
	return &models.Product{
		ProductID:       id,
		SKU:             sku,
		Name:            name,
		Category:        &category,
		Price:           19.99,
		QuantityInStock: 7,
		Description:     &description,
	}
}

func TestApplyClassification_SKUMatchWinsOverName(t *testing.T) {
	sku := "SKU-1"
	row := stagedRow(&sku, "Renamed Widget")

	bySKU := map[string]*models.Product{"SKU-1": catalogProduct(10, &sku, "Widget")}
	byName := map[string]*models.Product{"Renamed Widget": catalogProduct(99, nil, "Renamed Widget")}

	applyClassification([]*models.StagedProduct{row}, bySKU, byName)

	assert.Equal(t, models.OperationUpdate, row.OperationType)
	require.NotNil(t, row.ExistingProductID)
	assert.Equal(t, uint(10), *row.ExistingProductID)
}

func TestApplyClassification_NameMatchMarksUpdate(t *testing.T) {
	row := stagedRow(nil, "Widget")

	byName := map[string]*models.Product{"Widget": catalogProduct(10, nil, "Widget")}

	applyClassification([]*models.StagedProduct{row}, map[string]*models.Product{}, byName)

	assert.Equal(t, models.OperationUpdate, row.OperationType)
	require.NotNil(t, row.ExistingProductID)
	assert.Equal(t, uint(10), *row.ExistingProductID)
	require.NotNil(t, row.CurrentName)
	assert.Equal(t, "Widget", *row.CurrentName)
	require.NotNil(t, row.CurrentPrice)
	assert.Equal(t, 19.99, *row.CurrentPrice)
	require.NotNil(t, row.CurrentQuantityInStock)
	assert.Equal(t, 7, *row.CurrentQuantityInStock)
}

func TestApplyClassification_NoMatchResetsToInsert(t *testing.T) {
	sku := "SKU-NEW"
	row := stagedRow(&sku, "Brand New Widget")

	// Stale update markers from an earlier classification must not survive.
	staleID := uint(55)
	staleName := "Old Name"
	row.OperationType = models.OperationUpdate
	row.ExistingProductID = &staleID
	row.CurrentName = &staleName

	applyClassification([]*models.StagedProduct{row}, map[string]*models.Product{}, map[string]*models.Product{})

	assert.Equal(t, models.OperationInsert, row.OperationType)
	assert.Nil(t, row.ExistingProductID)
	assert.Nil(t, row.CurrentName)
	assert.Nil(t, row.CurrentCategory)
	assert.Nil(t, row.CurrentPrice)
	assert.Nil(t, row.CurrentQuantityInStock)
	assert.Nil(t, row.CurrentDescription)
	assert.Nil(t, row.CurrentSaleStartDate)
}

func TestApplyClassification_EmptySKUFallsBackToName(t *testing.T) {
	empty := ""
	row := stagedRow(&empty, "Widget")

	byName := map[string]*models.Product{"Widget": catalogProduct(3, nil, "Widget")}

	applyClassification([]*models.StagedProduct{row}, map[string]*models.Product{}, byName)

	assert.Equal(t, models.OperationUpdate, row.OperationType)
	require.NotNil(t, row.ExistingProductID)
	assert.Equal(t, uint(3), *row.ExistingProductID)
}
