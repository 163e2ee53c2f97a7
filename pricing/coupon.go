// Package pricing holds the storefront's money rules: line subtotals,
// coupon applicability and discount computation, and order totals.
// It has no storage or transport dependencies so the same rules run in the
// API, the cart client and the tests.
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	Percentage CouponType = "percentage"
	Fixed      CouponType = "fixed"
)

// Valid reports whether t is a known coupon type.
func (t CouponType) Valid() bool {
	return t == Percentage || t == Fixed
}

// UnlimitedUses marks a coupon without a usage cap.
const UnlimitedUses = -1

var (
	ErrCouponNotApplicable = errors.New("coupon cannot be applied to this order")

	ErrCouponInactive    = errors.New("coupon is not active")
	ErrCouponNotStarted  = errors.New("coupon is not valid yet")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrBelowMinimum      = errors.New("order amount is below the coupon minimum")
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	ErrFirstOrderOnly    = errors.New("coupon is valid on the first order only")
)

// Coupon is the rule set the engine evaluates. Zero ValidFrom/ValidUntil
// leave that side of the window open.
type Coupon struct {
	Code           string
	Type           CouponType
	Value          decimal.Decimal
	Category       string
	MinOrderAmount decimal.Decimal
	MaxDiscount    decimal.NullDecimal
	UsageLimit     int
	UsedCount      int
	ValidFrom      time.Time
	ValidUntil     time.Time
	FirstTimeOnly  bool
	Active         bool
}

// NormalizeCode upper-cases and trims a user supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckApplicability runs every precondition for using c on an order of
// orderAmount placed at now by a user with priorOrders completed orders.
// The returned error wraps ErrCouponNotApplicable and the specific reason.
func CheckApplicability(c Coupon, orderAmount decimal.Decimal, now time.Time, priorOrders int64) error {
	var reason error
	switch {
	case !c.Active:
		reason = ErrCouponInactive
	case !c.ValidFrom.IsZero() && now.Before(c.ValidFrom):
		reason = ErrCouponNotStarted
	case !c.ValidUntil.IsZero() && now.After(c.ValidUntil):
		reason = ErrCouponExpired
	case orderAmount.LessThan(c.MinOrderAmount):
		reason = ErrBelowMinimum
	case c.UsageLimit != UnlimitedUses && c.UsedCount >= c.UsageLimit:
		reason = ErrUsageLimitReached
	case c.FirstTimeOnly && priorOrders > 0:
		reason = ErrFirstOrderOnly
	}
	if reason != nil {
		return fmt.Errorf("%w: %w", ErrCouponNotApplicable, reason)
	}
	return nil
}

// Discount computes the discount c grants on an order with the given
// subtotal and items. A category-scoped percentage coupon only discounts
// the items of that category and yields zero when there are none. The
// result never exceeds the subtotal or the coupon cap and is never negative.
func Discount(c Coupon, subtotal decimal.Decimal, items []Item) decimal.Decimal {
	var d decimal.Decimal
	switch c.Type {
	case Percentage:
		base := subtotal
		if c.Category != "" {
			base = CategorySubtotal(items, c.Category)
		}
		d = base.Mul(c.Value).Div(hundred)
	case Fixed:
		d = c.Value
	default:
		return decimal.Zero
	}

	// Rounding comes first so the caps below hold for the returned value.
	d = d.Round(2)
	if c.MaxDiscount.Valid && d.GreaterThan(c.MaxDiscount.Decimal) {
		d = c.MaxDiscount.Decimal
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d
}

var hundred = decimal.NewFromInt(100)
