package orderControllers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
)

// MarkPaid records a settled payment intent against the order and confirms
// the order if it is still pending. Replayed deliveries are no-ops apart
// from rewriting the same payment fields.
func MarkPaid(ctx context.Context, db *gorm.DB, id uint, intentID string) (*models.Order, error) {
	var order models.Order

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order: %w", err)
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", id).UpdateColumns(map[string]any{
			"payment_status":    models.PaymentStatusPaid,
			"payment_intent_id": intentID,
		}).Error; err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaymentIntentID = intentID

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			UpdateColumn("status", models.OrderStatusConfirmed)
		if res.Error != nil {
			return fmt.Errorf("confirm order: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			order.Status = models.OrderStatusConfirmed
			change := models.OrderStatusChange{OrderID: id, Status: models.OrderStatusConfirmed, Note: "Payment received"}
			if err := tx.Create(&change).Error; err != nil {
				return fmt.Errorf("record status change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaymentFailed flags the order's payment as failed unless it has
// already been paid.
func MarkPaymentFailed(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", id, models.PaymentStatusPaid).
		UpdateColumn("payment_status", models.PaymentStatusFailed)
	if res.Error != nil {
		return fmt.Errorf("mark payment failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if n == 0 {
			return ErrOrderNotFound
		}
	}
	return nil
}
