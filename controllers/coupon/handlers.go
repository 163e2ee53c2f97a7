// Package couponcontroller serves the coupon catalogue, the checkout-time
// coupon check and the admin coupon CRUD.
package couponcontroller

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/pricing"
	"github.com/Ashish5180/vibe-bites/response"
)

// couponSummary is the public view of a coupon.
type couponSummary struct {
	Code           string              `json:"code"`
	Description    string              `json:"description"`
	Discount       decimal.Decimal     `json:"discount"`
	Type           pricing.CouponType  `json:"type"`
	Category       string              `json:"category,omitempty"`
	MinOrderAmount decimal.Decimal     `json:"minOrderAmount"`
	MaxDiscount    decimal.NullDecimal `json:"maxDiscount"`
	ValidUntil     time.Time           `json:"validUntil"`
}

func summarize(c models.Coupon) couponSummary {
	return couponSummary{
		Code:           c.Code,
		Description:    c.Description,
		Discount:       c.Discount,
		Type:           c.Type,
		Category:       c.Category,
		MinOrderAmount: c.MinOrderAmount,
		MaxDiscount:    c.MaxDiscount,
		ValidUntil:     c.ValidUntil,
	}
}

// GET /api/coupons
func GetActiveCoupons(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Where("is_active = ?", true).Order("created_at DESC").Find(&coupons).Error; err != nil {
			log.Error("list coupons failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch coupons")
			return
		}
		out := make([]couponSummary, len(coupons))
		for i, cp := range coupons {
			out[i] = summarize(cp)
		}
		response.OK(c, gin.H{"coupons": out})
	}
}

// GET /api/coupons/all (admin)
func GetAllCoupons(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Order("created_at DESC").Find(&coupons).Error; err != nil {
			log.Error("list all coupons failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch coupons")
			return
		}
		response.OK(c, gin.H{"coupons": coupons})
	}
}

// POST /api/coupons/validate
func ValidateCoupon(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var req ValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		coupon, err := Applicable(db, req.Code, req.OrderAmount, user.ID, time.Now())
		switch {
		case errors.Is(err, ErrCouponNotFound):
			response.BadRequest(c, "Invalid coupon code")
			return
		case errors.Is(err, pricing.ErrCouponNotApplicable):
			log.Debug("coupon rejected", zap.String("code", req.Code), zap.Uint("user_id", user.ID), zap.Error(err))
			response.BadRequest(c, "Coupon cannot be applied to this order")
			return
		case err != nil:
			log.Error("validate coupon failed", zap.Error(err))
			response.ServerError(c, "Error validating coupon")
			return
		}

		discount := pricing.Discount(coupon.Rules(), req.OrderAmount, req.pricingItems())
		response.OKMessage(c, "Coupon applied successfully", gin.H{
			"coupon":         summarize(*coupon),
			"discountAmount": discount,
		})
	}
}

// POST /api/coupons (admin)
func CreateCoupon(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		coupon := models.Coupon{
			Code:            pricing.NormalizeCode(req.Code),
			Description:     req.Description,
			Discount:        req.Discount,
			Type:            req.Type,
			Category:        req.Category,
			MinOrderAmount:  req.MinOrderAmount,
			MaxDiscount:     req.MaxDiscount,
			UsageLimit:      pricing.UnlimitedUses,
			ValidFrom:       time.Now(),
			ValidUntil:      req.ValidUntil,
			IsFirstTimeOnly: req.IsFirstTimeOnly,
			IsActive:        true,
		}
		if req.UsageLimit != nil {
			coupon.UsageLimit = *req.UsageLimit
		}
		if req.ValidFrom != nil {
			coupon.ValidFrom = *req.ValidFrom
		}
		if req.IsActive != nil {
			coupon.IsActive = *req.IsActive
		}
		if msg := check(coupon); msg != "" {
			response.BadRequest(c, msg)
			return
		}

		if err := db.Create(&coupon).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				response.BadRequest(c, "Coupon code already exists")
				return
			}
			log.Error("create coupon failed", zap.Error(err))
			response.ServerError(c, "Error creating coupon")
			return
		}
		response.Created(c, "Coupon created successfully", gin.H{"coupon": coupon})
	}
}

// PUT /api/coupons/:id (admin)
func UpdateCoupon(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		var req UpdateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		var coupon models.Coupon
		if err := db.First(&coupon, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Coupon not found")
				return
			}
			log.Error("load coupon failed", zap.Uint("coupon_id", id), zap.Error(err))
			response.ServerError(c, "Error updating coupon")
			return
		}

		req.apply(&coupon)
		if msg := check(coupon); msg != "" {
			response.BadRequest(c, msg)
			return
		}

		if err := db.Save(&coupon).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				response.BadRequest(c, "Coupon code already exists")
				return
			}
			log.Error("update coupon failed", zap.Uint("coupon_id", id), zap.Error(err))
			response.ServerError(c, "Error updating coupon")
			return
		}
		response.OKMessage(c, "Coupon updated successfully", gin.H{"coupon": coupon})
	}
}

// DELETE /api/coupons/:id (admin) deactivates the coupon; orders keep
// referring to its code.
func DeleteCoupon(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		res := db.Model(&models.Coupon{}).Where("id = ?", id).Update("is_active", false)
		if res.Error != nil {
			log.Error("deactivate coupon failed", zap.Uint("coupon_id", id), zap.Error(res.Error))
			response.ServerError(c, "Error deleting coupon")
			return
		}
		if res.RowsAffected == 0 {
			response.NotFound(c, "Coupon not found")
			return
		}
		response.OKMessage(c, "Coupon deleted successfully", nil)
	}
}

func (r UpdateCouponRequest) apply(c *models.Coupon) {
	if r.Code != nil {
		c.Code = pricing.NormalizeCode(*r.Code)
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.Discount != nil {
		c.Discount = *r.Discount
	}
	if r.Type != nil {
		c.Type = *r.Type
	}
	if r.Category != nil {
		c.Category = *r.Category
	}
	if r.MinOrderAmount != nil {
		c.MinOrderAmount = *r.MinOrderAmount
	}
	if r.MaxDiscount != nil {
		c.MaxDiscount = decimal.NewNullDecimal(*r.MaxDiscount)
	}
	if r.UsageLimit != nil {
		c.UsageLimit = *r.UsageLimit
	}
	if r.ValidFrom != nil {
		c.ValidFrom = *r.ValidFrom
	}
	if r.ValidUntil != nil {
		c.ValidUntil = *r.ValidUntil
	}
	if r.IsFirstTimeOnly != nil {
		c.IsFirstTimeOnly = *r.IsFirstTimeOnly
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

// check holds the cross-field rules binding tags cannot express.
func check(c models.Coupon) string {
	switch {
	case c.Code == "":
		return "Coupon code is required"
	case percentTooHigh(c.Type, c.Discount):
		return "Percentage discount cannot exceed 100"
	case !c.ValidUntil.After(c.ValidFrom):
		return "Valid until must be after valid from"
	}
	return ""
}
