package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
)

// exportColumns is the fixed workbook column order for both export paths.
var exportColumns = []string{
	columnSKU,
	columnName,
	columnCategory,
	columnPrice,
	columnQuantityInStock,
	columnDescription,
	columnSaleStartDate,
}

const exportDateLayout = "2006-01-02"

// ExportService renders catalog and staging data as xlsx workbooks. Zero
// matching rows still produce a valid header-only workbook.
type ExportService interface {
	ExportProducts(ctx context.Context, filters repositories.ProductFilters) ([]byte, error)
	ExportStaging(ctx context.Context, sessionID uuid.UUID) ([]byte, error)
}

type exportService struct {
	products repositories.ProductRepository
	staging  repositories.StagingRepository
	logger   utils.Logger
}

func NewExportService(
	products repositories.ProductRepository,
	staging repositories.StagingRepository,
	logger utils.Logger,
) ExportService {
	return &exportService{
		products: products,
		staging:  staging,
		logger:   logger,
	}
}

// ExportProducts renders the filtered catalog into a workbook.
func (s *exportService) ExportProducts(ctx context.Context, filters repositories.ProductFilters) ([]byte, error) {
	products, err := s.products.SearchAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for export: %w", err)
	}

	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, []interface{}{
			derefString(p.SKU),
			p.Name,
			derefString(p.Category),
			p.Price,
			p.QuantityInStock,
			derefString(p.Description),
			formatExportDate(p.SaleStartDate),
		})
	}

	return renderWorkbook("Products", rows)
}

// ExportStaging renders the staged rows of one session into a workbook,
// ordered by source row number.
func (s *exportService) ExportStaging(ctx context.Context, sessionID uuid.UUID) ([]byte, error) {
	staged, err := s.staging.ListAll(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged rows for export: %w", err)
	}

	rows := make([][]interface{}, 0, len(staged))
	for _, r := range staged {
		rows = append(rows, []interface{}{
			derefString(r.SKU),
			r.Name,
			derefString(r.Category),
			r.Price,
			r.QuantityInStock,
			derefString(r.Description),
			formatExportDate(r.SaleStartDate),
		})
	}

	return renderWorkbook("Import Data", rows)
}

func renderWorkbook(sheetName string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(exportColumns), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to address header range: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastHeaderCell, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write data cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatExportDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(exportDateLayout)
}
