package services

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

// Import file parsing. Both decoders materialize the whole file into
// []models.ImportRow with all cells textual; normalization happens afterwards.
// Rows without a Name are skipped. Row numbers refer to the source file so
// validation messages line up with what the user sees in their editor.

const (
	columnSKU             = "SKU"
	columnName            = "Name"
	columnCategory        = "Category"
	columnPrice           = "Price"
	columnQuantityInStock = "QuantityInStock"
	columnDescription     = "Description"
	columnSaleStartDate   = "SaleStartDate"
)

func parseImportFile(filename string, reader io.Reader) ([]models.ImportRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(reader)
	case ".xlsx", ".xls":
		return parseExcel(reader)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// parseCSV reads a comma-separated file line by line. Fields are split on
// commas with surrounding whitespace and double quotes trimmed; embedded
// commas inside quoted fields are not supported, matching the template the
// service hands out. Header lookup is case-insensitive. The row counter
// starts at 1 and is advanced for every line after the header, blank lines
// included, so the first data line is row 2.
func parseCSV(reader io.Reader) ([]models.ImportRow, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read csv header: %w", err)
		}
		return nil, nil
	}

	headers := splitCSVLine(scanner.Text())
	columnIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		columnIndex[strings.ToLower(h)] = i
	}

	field := func(fields []string, column string) string {
		idx, ok := columnIndex[strings.ToLower(column)]
		if !ok || idx >= len(fields) {
			return ""
		}
		return fields[idx]
	}

	var rows []models.ImportRow
	rowNumber := 1
	for scanner.Scan() {
		rowNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitCSVLine(line)
		name := field(fields, columnName)
		if name == "" {
			continue
		}

		rows = append(rows, models.ImportRow{
			RowNumber:       rowNumber,
			SKU:             optionalCell(field(fields, columnSKU)),
			Name:            name,
			Category:        optionalCell(field(fields, columnCategory)),
			Price:           field(fields, columnPrice),
			QuantityInStock: field(fields, columnQuantityInStock),
			Description:     optionalCell(field(fields, columnDescription)),
			SaleStartDate:   optionalCell(field(fields, columnSaleStartDate)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read csv content: %w", err)
	}
	return rows, nil
}

func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, part := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(part), "\"")
	}
	return parts
}

// parseExcel reads the first sheet of a workbook. Header cells on row 1 are
// matched case-sensitively against the template column names. Row numbers are
// the literal sheet rows.
func parseExcel(reader io.Reader) ([]models.ImportRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(sheetRows) == 0 {
		return nil, nil
	}

	columnIndex := make(map[string]int, len(sheetRows[0]))
	for i, h := range sheetRows[0] {
		columnIndex[strings.TrimSpace(h)] = i
	}

	cell := func(cells []string, column string) string {
		idx, ok := columnIndex[column]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	var rows []models.ImportRow
	for i := 1; i < len(sheetRows); i++ {
		cells := sheetRows[i]
		name := cell(cells, columnName)
		if name == "" {
			continue
		}

		rows = append(rows, models.ImportRow{
			RowNumber:       i + 1,
			SKU:             optionalCell(cell(cells, columnSKU)),
			Name:            name,
			Category:        optionalCell(cell(cells, columnCategory)),
			Price:           cell(cells, columnPrice),
			QuantityInStock: cell(cells, columnQuantityInStock),
			Description:     optionalCell(cell(cells, columnDescription)),
			SaleStartDate:   optionalCell(cell(cells, columnSaleStartDate)),
		})
	}
	return rows, nil
}

func optionalCell(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
