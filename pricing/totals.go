package pricing

import "github.com/shopspring/decimal"

// Categories is the closed set of product categories.
var Categories = []string{"Makhana", "Chips", "Bites", "Nuts", "Seeds"}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Item is a priced line: unit price times quantity within a category.
type Item struct {
	Category string
	Price    decimal.Decimal
	Quantity int
}

// LineTotal is Price × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums every line total.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// CategorySubtotal sums the line totals of items in category.
func CategorySubtotal(items []Item, category string) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Category == category {
			sum = sum.Add(it.LineTotal())
		}
	}
	return sum
}

// Totals is the priced summary of an order or cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shippingCost"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Compute prices items with the given shipping cost and optional coupon.
// Total is Subtotal + Shipping - Discount; Discount never exceeds Subtotal.
func Compute(items []Item, shipping decimal.Decimal, coupon *Coupon) Totals {
	subtotal := Subtotal(items)
	discount := decimal.Zero
	if coupon != nil {
		discount = Discount(*coupon, subtotal, items)
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(shipping).Sub(discount),
	}
}
