package repositories

import (
	"time"
)

// ===== SHARED FILTER STRUCTS =====

// StockRange is one inclusive quantity band a search can match against.
// Min or Max left nil leaves that side unbounded.
type StockRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// ProductFilters parameterizes a catalog search. SortOrder follows the wire
// convention of 1 for ascending and -1 for descending.
type ProductFilters struct {
	Name             *string      `json:"name"`
	SKU              *string      `json:"sku"`
	Categories       []string     `json:"categories"`
	PriceMin         *float64     `json:"priceMin"`
	PriceMax         *float64     `json:"priceMax"`
	StockRanges      []StockRange `json:"stockRanges"`
	SaleStartDateMin *time.Time   `json:"saleStartDateMin"`
	SaleStartDateMax *time.Time   `json:"saleStartDateMax"`
	PageNumber       int          `json:"pageNumber"`
	PageSize         int          `json:"pageSize"`
	SortField        string       `json:"sortField"`
	SortOrder        int          `json:"sortOrder" validate:"omitempty,sort_order"`
}

// StagingListOptions parameterizes one review page of staged rows.
type StagingListOptions struct {
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	SortField  string `json:"sortField"`
	SortOrder  int    `json:"sortOrder" validate:"omitempty,sort_order"`
}

// Normalize fills defaults so repositories never see zero paging values.
func (o *StagingListOptions) Normalize() {
	if o.PageNumber < 1 {
		o.PageNumber = 1
	}
	if o.PageSize < 1 {
		o.PageSize = 10
	}
	if o.SortField == "" {
		o.SortField = "RowNumber"
	}
	if o.SortOrder != -1 {
		o.SortOrder = 1
	}
}

// Normalize fills defaults for a catalog search.
func (f *ProductFilters) Normalize() {
	if f.PageNumber < 1 {
		f.PageNumber = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.SortField == "" {
		f.SortField = "Name"
	}
	if f.SortOrder != -1 {
		f.SortOrder = 1
	}
}
