package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/pricing"
)

type Coupon struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Code            string              `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Description     string              `gorm:"size:200" json:"description"`
	Discount        decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"discount"`
	Type            pricing.CouponType  `gorm:"type:VARCHAR(20);not null" json:"type"`
	Category        string              `gorm:"size:20" json:"category,omitempty"`
	MinOrderAmount  decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"minOrderAmount"`
	MaxDiscount     decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"maxDiscount"`
	UsageLimit      int                 `gorm:"not null" json:"usageLimit"`
	UsedCount       int                 `gorm:"not null" json:"usedCount"`
	ValidFrom       time.Time           `json:"validFrom"`
	ValidUntil      time.Time           `gorm:"index" json:"validUntil"`
	IsFirstTimeOnly bool                `gorm:"not null" json:"isFirstTimeOnly"`
	IsActive        bool                `gorm:"not null;index" json:"isActive"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// Rules is the coupon as the pricing engine sees it.
func (c Coupon) Rules() pricing.Coupon {
	return pricing.Coupon{
		Code:           c.Code,
		Type:           c.Type,
		Value:          c.Discount,
		Category:       c.Category,
		MinOrderAmount: c.MinOrderAmount,
		MaxDiscount:    c.MaxDiscount,
		UsageLimit:     c.UsageLimit,
		UsedCount:      c.UsedCount,
		ValidFrom:      c.ValidFrom,
		ValidUntil:     c.ValidUntil,
		FirstTimeOnly:  c.IsFirstTimeOnly,
		Active:         c.IsActive,
	}
}
