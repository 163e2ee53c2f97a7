package pricing_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"github.com/Ashish5180/vibe-bites/pricing"
)

// buildItems zips generated paise prices, quantities and category indexes.
func buildItems(prices, qtys, cats []int) []pricing.Item {
	n := len(prices)
	if len(qtys) < n {
		n = len(qtys)
	}
	if len(cats) < n {
		n = len(cats)
	}
	items := make([]pricing.Item, n)
	for i := 0; i < n; i++ {
		items[i] = pricing.Item{
			Category: pricing.Categories[cats[i]%len(pricing.Categories)],
			Price:    decimal.New(int64(prices[i]), -2),
			Quantity: qtys[i],
		}
	}
	return items
}

func TestCategoryPercentageDiscountProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("category percentage discount is the capped share of the category subtotal", prop.ForAll(
		func(prices, qtys, cats []int, pct, capRupees, catIdx int) bool {
			items := buildItems(prices, qtys, cats)
			category := pricing.Categories[catIdx]
			c := pricing.Coupon{
				Type:        pricing.Percentage,
				Value:       decimal.NewFromInt(int64(pct)),
				Category:    category,
				MaxDiscount: decimal.NewNullDecimal(decimal.NewFromInt(int64(capRupees))),
			}

			subtotal := pricing.Subtotal(items)
			catSubtotal := pricing.CategorySubtotal(items, category)
			want := catSubtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
			if want.GreaterThan(c.MaxDiscount.Decimal) {
				want = c.MaxDiscount.Decimal
			}
			want = want.Round(2)

			got := pricing.Discount(c, subtotal, items)
			if catSubtotal.IsZero() && !got.IsZero() {
				return false
			}
			return got.Equal(want)
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
		gen.SliceOf(gen.IntRange(1, 10)),
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.IntRange(0, 100),
		gen.IntRange(0, 5000),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

func TestFixedDiscountProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fixed discount is min(value, subtotal) and total is never negative", prop.ForAll(
		func(prices, qtys, cats []int, valuePaise int) bool {
			items := buildItems(prices, qtys, cats)
			c := &pricing.Coupon{Type: pricing.Fixed, Value: decimal.New(int64(valuePaise), -2)}

			totals := pricing.Compute(items, decimal.Zero, c)
			want := decimal.Min(c.Value, totals.Subtotal)
			return totals.Discount.Equal(want) && !totals.Total.IsNegative()
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
		gen.SliceOf(gen.IntRange(1, 10)),
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.IntRange(0, 1000000),
	))

	properties.TestingRun(t)
}

func TestTotalsInvariantProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("total == subtotal + shipping - discount and discount <= subtotal", prop.ForAll(
		func(prices, qtys, cats []int, pct, shippingPaise int, fixed bool) bool {
			items := buildItems(prices, qtys, cats)
			c := &pricing.Coupon{Type: pricing.Percentage, Value: decimal.NewFromInt(int64(pct))}
			if fixed {
				c.Type = pricing.Fixed
				c.Value = decimal.NewFromInt(int64(pct) * 10)
			}
			shipping := decimal.New(int64(shippingPaise), -2)

			totals := pricing.Compute(items, shipping, c)
			return totals.Total.Equal(totals.Subtotal.Add(totals.Shipping).Sub(totals.Discount)) &&
				totals.Discount.LessThanOrEqual(totals.Subtotal)
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
		gen.SliceOf(gen.IntRange(1, 10)),
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.IntRange(0, 100),
		gen.IntRange(0, 10000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
