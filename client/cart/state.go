// Package cart is the shopper-side cart: an explicit state container driven
// by pure reductions over a closed action set, persisted through a storage
// port and mirrored to the API on a best-effort basis.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/pricing"
)

// LineItem is one (product, size) entry with the price seen when it was added.
type LineItem struct {
	ProductID string          `json:"id"`
	Size      string          `json:"selectedSize"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (i LineItem) sameLine(productID, size string) bool {
	return i.ProductID == productID && i.Size == size
}

// AppliedCoupon is the coupon attached to the cart.
type AppliedCoupon struct {
	Code        string              `json:"code"`
	Type        pricing.CouponType  `json:"type"`
	Discount    decimal.Decimal     `json:"discount"`
	Category    string              `json:"category,omitempty"`
	MaxDiscount decimal.NullDecimal `json:"maxDiscount"`
}

// State is the whole cart. Items are unique by (ProductID, Size) and every
// quantity is at least one.
type State struct {
	Items         []LineItem     `json:"items"`
	AppliedCoupon *AppliedCoupon `json:"appliedCoupon"`
}

// Totals prices the cart with the shared pricing rules. Shipping is free.
func (s State) Totals() pricing.Totals {
	items := make([]pricing.Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = pricing.Item{Category: it.Category, Price: it.Price, Quantity: it.Quantity}
	}

	var coupon *pricing.Coupon
	if s.AppliedCoupon != nil {
		coupon = &pricing.Coupon{
			Code:        s.AppliedCoupon.Code,
			Type:        s.AppliedCoupon.Type,
			Value:       s.AppliedCoupon.Discount,
			Category:    s.AppliedCoupon.Category,
			MaxDiscount: s.AppliedCoupon.MaxDiscount,
		}
	}
	return pricing.Compute(items, decimal.Zero, coupon)
}

// Count is the number of units across all lines.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s State) clone() State {
	out := State{Items: append(make([]LineItem, 0, len(s.Items)), s.Items...)}
	if s.AppliedCoupon != nil {
		c := *s.AppliedCoupon
		out.AppliedCoupon = &c
	}
	return out
}

// Normalize merges duplicate lines and drops non-positive quantities. Used
// on any state that did not come out of Reduce (disk, network).
func Normalize(s State) State {
	out := State{Items: make([]LineItem, 0, len(s.Items))}
	if s.AppliedCoupon != nil {
		c := *s.AppliedCoupon
		out.AppliedCoupon = &c
	}
	for _, it := range s.Items {
		if it.Quantity < 1 {
			continue
		}
		out.Items = addLine(out.Items, it)
	}
	return out
}

func addLine(items []LineItem, item LineItem) []LineItem {
	for i := range items {
		if items[i].sameLine(item.ProductID, item.Size) {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}
