package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a live catalog entry. Price and QuantityInStock are expected to
// be non-negative; rows violating that arrive only through the import staging
// area, where validation blocks them from being committed.
type Product struct {
	ProductID       uint       `json:"productId" gorm:"primaryKey;column:product_id"`
	SKU             *string    `json:"sku" gorm:"column:sku;size:50;uniqueIndex" validate:"omitempty,max=50"`
	Name            string     `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Category        *string    `json:"category" gorm:"size:100;index" validate:"omitempty,max=100"`
	Price           float64    `json:"price" gorm:"not null;default:0" validate:"min=0"`
	QuantityInStock int        `json:"quantityInStock" gorm:"not null;default:0" validate:"min=0"`
	Description     *string    `json:"description" gorm:"type:text"`
	SaleStartDate   *time.Time `json:"saleStartDate"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}

// PagedProducts is the result shape of a filtered catalog search.
type PagedProducts struct {
	Items      []*Product `json:"items"`
	TotalCount int64      `json:"totalCount"`
}
