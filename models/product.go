package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Nutrition struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
	Fiber    string `json:"fiber"`
}

type Product struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:100;not null;index" json:"name"`
	Description string        `gorm:"size:1000" json:"description"`
	Category    string        `gorm:"size:20;not null;index" json:"category"`
	Image       string        `gorm:"not null" json:"image"`
	Ingredients string        `json:"ingredients"`
	Nutrition   Nutrition     `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	Sizes       []ProductSize `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes"`
	Rating      float64       `gorm:"not null" json:"rating"`
	ReviewCount int           `gorm:"not null" json:"reviewCount"`
	IsActive    bool          `gorm:"not null" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProductSize is a size tier: its own price and stock under one label.
type ProductSize struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_product_size" json:"-"`
	Size      string          `gorm:"size:20;not null;uniqueIndex:idx_product_size" json:"size"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock     int             `gorm:"not null" json:"stock"`
}

// SizeFor returns the tier labelled size, or nil.
func (p *Product) SizeFor(size string) *ProductSize {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i]
		}
	}
	return nil
}

// InStock reports whether quantity units of size can be sold.
func (p *Product) InStock(size string, quantity int) bool {
	s := p.SizeFor(size)
	return s != nil && s.Stock >= quantity
}

// MinPrice is the cheapest tier's price.
func (p *Product) MinPrice() decimal.Decimal {
	if len(p.Sizes) == 0 {
		return decimal.Zero
	}
	min := p.Sizes[0].Price
	for _, s := range p.Sizes[1:] {
		if s.Price.LessThan(min) {
			min = s.Price
		}
	}
	return min
}
