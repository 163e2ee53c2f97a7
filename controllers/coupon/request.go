package couponcontroller

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/pricing"
)

type ValidateItem struct {
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price" binding:"gte=0"`
	Quantity int             `json:"quantity" binding:"gte=1"`
}

type ValidateRequest struct {
	Code        string          `json:"code" binding:"required"`
	OrderAmount decimal.Decimal `json:"orderAmount" binding:"gte=0"`
	Items       []ValidateItem  `json:"items" binding:"omitempty,dive"`
}

func (r ValidateRequest) pricingItems() []pricing.Item {
	out := make([]pricing.Item, len(r.Items))
	for i, it := range r.Items {
		out[i] = pricing.Item{Category: it.Category, Price: it.Price, Quantity: it.Quantity}
	}
	return out
}

type CreateCouponRequest struct {
	Code            string              `json:"code" binding:"required,max=20"`
	Description     string              `json:"description" binding:"required,max=200"`
	Discount        decimal.Decimal     `json:"discount" binding:"gte=0"`
	Type            pricing.CouponType  `json:"type" binding:"required,coupontype"`
	Category        string              `json:"category" binding:"omitempty,category"`
	MinOrderAmount  decimal.Decimal     `json:"minOrderAmount" binding:"gte=0"`
	MaxDiscount     decimal.NullDecimal `json:"maxDiscount" binding:"omitempty,gte=0"`
	UsageLimit      *int                `json:"usageLimit" binding:"omitempty,gte=-1"`
	ValidFrom       *time.Time          `json:"validFrom"`
	ValidUntil      time.Time           `json:"validUntil" binding:"required"`
	IsFirstTimeOnly bool                `json:"isFirstTimeOnly"`
	IsActive        *bool               `json:"isActive"`
}

type UpdateCouponRequest struct {
	Code            *string             `json:"code" binding:"omitempty,min=1,max=20"`
	Description     *string             `json:"description" binding:"omitempty,max=200"`
	Discount        *decimal.Decimal    `json:"discount" binding:"omitempty,gte=0"`
	Type            *pricing.CouponType `json:"type" binding:"omitempty,coupontype"`
	Category        *string             `json:"category" binding:"omitempty,category"`
	MinOrderAmount  *decimal.Decimal    `json:"minOrderAmount" binding:"omitempty,gte=0"`
	MaxDiscount     *decimal.Decimal    `json:"maxDiscount" binding:"omitempty,gte=0"`
	UsageLimit      *int                `json:"usageLimit" binding:"omitempty,gte=-1"`
	ValidFrom       *time.Time          `json:"validFrom"`
	ValidUntil      *time.Time          `json:"validUntil"`
	IsFirstTimeOnly *bool               `json:"isFirstTimeOnly"`
	IsActive        *bool               `json:"isActive"`
}

var hundred = decimal.NewFromInt(100)

// percentTooHigh rejects percentage coupons above 100%.
func percentTooHigh(t pricing.CouponType, v decimal.Decimal) bool {
	return t == pricing.Percentage && v.GreaterThan(hundred)
}
