package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is one catalog entry. Field names in JSON follow the storefront's
// catalog format: "price" is the display label ("45 kr / kg") and "quantity"
// is the package size label ("1 kg"), not a count.
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       string         `gorm:"not null" json:"price"`
	PriceValue  float64        `gorm:"not null" json:"priceValue"`
	PackageSize string         `json:"quantity"`
	Image       string         `json:"image"`
	Popular     bool           `gorm:"default:false" json:"popular"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
