package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	couponcontroller "github.com/Ashish5180/vibe-bites/controllers/coupon"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/pricing"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ItemError reports which requested line could not be fulfilled.
type ItemError struct {
	Err       error
	ProductID uint
	Name      string
	Size      string
}

func (e *ItemError) Error() string {
	if errors.Is(e.Err, ErrProductNotFound) {
		return fmt.Sprintf("Product %d not found", e.ProductID)
	}
	return fmt.Sprintf("%s (%s) is out of stock", e.Name, e.Size)
}

func (e *ItemError) Unwrap() error { return e.Err }

// -------- Request Structs --------

type OrderItemInput struct {
	ProductID uint   `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
}

type ShippingAddressInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Pincode   string `json:"pincode" binding:"required,pincode"`
	Phone     string `json:"phone" binding:"required,phone10"`
}

type AppliedCouponInput struct {
	Code string `json:"code"`
}

type PlaceOrderRequest struct {
	Items           []OrderItemInput     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod" binding:"required,oneof=card cod upi netbanking"`
	CouponCode      string               `json:"couponCode" binding:"max=20"`
	// AppliedCoupon is the cart's coupon object; only its code is trusted.
	AppliedCoupon *AppliedCouponInput `json:"appliedCoupon"`
}

func (r PlaceOrderRequest) couponCode() string {
	if code := pricing.NormalizeCode(r.CouponCode); code != "" {
		return code
	}
	if r.AppliedCoupon != nil {
		return pricing.NormalizeCode(r.AppliedCoupon.Code)
	}
	return ""
}

func (a ShippingAddressInput) model() models.ShippingAddress {
	return models.ShippingAddress{
		FirstName: strings.TrimSpace(a.FirstName),
		LastName:  strings.TrimSpace(a.LastName),
		Address:   strings.TrimSpace(a.Address),
		City:      strings.TrimSpace(a.City),
		State:     strings.TrimSpace(a.State),
		Pincode:   a.Pincode,
		Phone:     a.Phone,
	}
}

// -------- Helpers --------

// newOrderNumber is VB + a second-resolution timestamp + a short random suffix.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "VB" + now.Format("20060102150405") + suffix
}

// decrementStock takes quantity units from one tier only if that many are
// left, so concurrent checkouts cannot oversell.
func decrementStock(tx *gorm.DB, productID uint, size string, quantity int) error {
	res := tx.Model(&models.ProductSize{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("decrement stock: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return ErrOutOfStock
	}
	return nil
}

func restock(tx *gorm.DB, items []models.OrderItem) error {
	for _, it := range items {
		if err := tx.Model(&models.ProductSize{}).
			Where("product_id = ? AND size = ?", it.ProductID, it.Size).
			UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
			return fmt.Errorf("restock: %w", err)
		}
	}
	return nil
}

// -------- Core Logic --------

// PlaceOrder prices the requested items against live catalogue data and
// commits the order, the coupon redemption and the stock decrements in one
// transaction. Client supplied prices and discounts are never trusted.
func PlaceOrder(ctx context.Context, db *gorm.DB, user *models.User, req PlaceOrderRequest) (*models.Order, error) {
	var order models.Order

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]models.OrderItem, 0, len(req.Items))
		lines := make([]pricing.Item, 0, len(req.Items))

		for _, in := range req.Items {
			var product models.Product
			if err := tx.Preload("Sizes").First(&product, in.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ItemError{Err: ErrProductNotFound, ProductID: in.ProductID, Size: in.Size}
				}
				return fmt.Errorf("load product %d: %w", in.ProductID, err)
			}
			if !product.IsActive {
				return &ItemError{Err: ErrProductNotFound, ProductID: in.ProductID, Size: in.Size}
			}
			if !product.InStock(in.Size, in.Quantity) {
				return &ItemError{Err: ErrOutOfStock, ProductID: product.ID, Name: product.Name, Size: in.Size}
			}

			tier := product.SizeFor(in.Size)
			item := models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Size:      tier.Size,
				Price:     tier.Price,
				Quantity:  in.Quantity,
				Image:     product.Image,
				Category:  product.Category,
			}
			items = append(items, item)
			lines = append(lines, item.PricingItem())
		}

		var rules *pricing.Coupon
		code := req.couponCode()
		if code != "" {
			coupon, err := couponcontroller.Applicable(tx, code, pricing.Subtotal(lines), user.ID, time.Now())
			if err != nil {
				return err
			}
			if err := couponcontroller.Redeem(tx, coupon.ID); err != nil {
				return err
			}
			r := coupon.Rules()
			rules = &r
		}

		totals := pricing.Compute(lines, decimal.Zero, rules)
		order = models.Order{
			OrderNumber:     newOrderNumber(time.Now()),
			UserID:          user.ID,
			Items:           items,
			ShippingAddress: req.ShippingAddress.model(),
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			Subtotal:        totals.Subtotal,
			ShippingCost:    totals.Shipping,
			Discount:        totals.Discount,
			Total:           totals.Total,
			CouponCode:      code,
			Status:          models.OrderStatusPending,
			StatusHistory: []models.OrderStatusChange{
				{Status: models.OrderStatusPending, Note: "Order placed"},
			},
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, it := range items {
			if err := decrementStock(tx, it.ProductID, it.Size, it.Quantity); err != nil {
				if errors.Is(err, ErrOutOfStock) {
					return &ItemError{Err: ErrOutOfStock, ProductID: it.ProductID, Name: it.Name, Size: it.Size}
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
