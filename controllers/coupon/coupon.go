package couponcontroller

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/pricing"
)

var ErrCouponNotFound = errors.New("invalid coupon code")

// PriorOrders counts the orders userID has placed, in any status.
func PriorOrders(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// Applicable loads the coupon by code and checks it against an order of
// orderAmount placed by userID. Failures wrap ErrCouponNotFound or
// pricing.ErrCouponNotApplicable.
func Applicable(db *gorm.DB, code string, orderAmount decimal.Decimal, userID uint, now time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := db.Where("code = ?", pricing.NormalizeCode(code)).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}

	prior, err := PriorOrders(db, userID)
	if err != nil {
		return nil, fmt.Errorf("count prior orders: %w", err)
	}
	if err := pricing.CheckApplicability(coupon.Rules(), orderAmount, now, prior); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Redeem bumps usedCount unless the usage limit was reached in the meantime.
func Redeem(tx *gorm.DB, couponID uint) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = ? OR used_count < usage_limit)", couponID, pricing.UnlimitedUses).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("redeem coupon: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: %w", pricing.ErrCouponNotApplicable, pricing.ErrUsageLimitReached)
	}
	return nil
}
