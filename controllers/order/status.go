package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
)

// transitions lists the statuses reachable from each status. Cancelled and
// returned are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusReturned},
	models.OrderStatusDelivered:  {models.OrderStatusReturned},
}

// TransitionError is a status change the state machine does not allow.
type TransitionError struct {
	From, To models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot change order status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type UpdateStatusRequest struct {
	Status            models.OrderStatus `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled returned"`
	Notes             string             `json:"notes" binding:"max=500"`
	TrackingNumber    string             `json:"trackingNumber" binding:"max=100"`
	Carrier           string             `json:"carrier" binding:"max=100"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery"`
}

// UpdateStatus moves order id to req.Status and appends the change to its
// history. Cancelling returns the items to stock.
func UpdateStatus(ctx context.Context, db *gorm.DB, id uint, req UpdateStatusRequest) (*models.Order, error) {
	var order models.Order

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("User").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order: %w", err)
		}

		from := order.Status
		if !CanTransition(from, req.Status) {
			return &TransitionError{From: from, To: req.Status}
		}

		updates := map[string]any{"status": req.Status}
		if req.Status == models.OrderStatusShipped {
			order.ShippingDetails = models.ShippingDetails{
				TrackingNumber:    strings.TrimSpace(req.TrackingNumber),
				Carrier:           strings.TrimSpace(req.Carrier),
				EstimatedDelivery: req.EstimatedDelivery,
			}
			updates["shipping_tracking_number"] = order.ShippingDetails.TrackingNumber
			updates["shipping_carrier"] = order.ShippingDetails.Carrier
			updates["shipping_estimated_delivery"] = order.ShippingDetails.EstimatedDelivery
		}

		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, from).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
		}

		if req.Status == models.OrderStatusCancelled {
			if err := restock(tx, order.Items); err != nil {
				return err
			}
		}

		change := models.OrderStatusChange{OrderID: order.ID, Status: req.Status, Note: strings.TrimSpace(req.Notes)}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("record status change: %w", err)
		}

		order.Status = req.Status
		return tx.Where("order_id = ?", order.ID).Order("id ASC").Find(&order.StatusHistory).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
