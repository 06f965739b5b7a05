package services

import (
	"strconv"
	"strings"
	"time"
)

// Cell normalization for import rows. Numeric cells never fail the row: a
// value that does not parse becomes zero and field validation decides later
// whether the row is acceptable. Dates resolve through three stages: Excel
// serial number, an explicit format list, then general timestamp layouts.

// ParsePrice converts a price cell to a float, falling back to 0.
func ParsePrice(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// ParseQuantity converts a quantity cell to an int, falling back to 0.
func ParseQuantity(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}

// saleDateLayouts is the explicit format list tried after the serial-number
// stage. Order matters: earlier layouts win for ambiguous day/month values.
var saleDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"2/1/2006",
	"2006/01/02",
	"02-01-2006",
	"01-02-2006",
	"2006.01.02",
	"02.01.2006",
}

// generalLayouts is the last-resort stage for timestamp-shaped cells.
var generalLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// excelEpoch anchors serial date conversion. Serial N maps to the epoch plus
// N-2 days, matching spreadsheet numbering including its 1900 leap-year quirk.
var excelEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseSaleDate converts a date cell to a time, or nil when the cell is empty
// or unparseable. A purely numeric cell is treated as an Excel serial number
// first; serials resolving outside the years 1900-2100 fall through to the
// string formats instead of being trusted.
func ParseSaleDate(value *string) *time.Time {
	if value == nil {
		return nil
	}
	text := strings.TrimSpace(*value)
	if text == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(text, 64); err == nil {
		// Whole days via AddDate keeps the date exact; only the fractional
		// day part goes through duration arithmetic.
		wholeDays := int(serial)
		resolved := excelEpoch.AddDate(0, 0, wholeDays-2)
		if frac := serial - float64(wholeDays); frac > 0 {
			resolved = resolved.Add(time.Duration(frac * 24 * float64(time.Hour)))
		}
		if resolved.Year() >= 1900 && resolved.Year() <= 2100 {
			return &resolved
		}
	}

	for _, layout := range saleDateLayouts {
		if resolved, err := time.Parse(layout, text); err == nil {
			return &resolved
		}
	}
	for _, layout := range generalLayouts {
		if resolved, err := time.Parse(layout, text); err == nil {
			return &resolved
		}
	}
	return nil
}
