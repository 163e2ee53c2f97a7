// Package paymentcontroller exposes card payments: intent creation and
// confirmation for shoppers, and the processor's webhook.
package paymentcontroller

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	orderControllers "github.com/Ashish5180/vibe-bites/controllers/order"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/payments"
	"github.com/Ashish5180/vibe-bites/response"
	"github.com/Ashish5180/vibe-bites/telemetry"
)

const maxWebhookBody = 64 << 10

type Handler struct {
	DB      *gorm.DB
	Gateway payments.Gateway
	Hub     *orderControllers.Hub
	Metrics *telemetry.Metrics
	Log     *zap.Logger
}

type CreateIntentRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"gte=1"`
	Currency string          `json:"currency" binding:"omitempty,oneof=inr usd"`
	OrderID  string          `json:"orderId" binding:"omitempty,numeric"`
}

type ConfirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	OrderID         string `json:"orderId" binding:"omitempty,numeric"`
}

type intentView struct {
	PaymentIntentID string          `json:"paymentIntentId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Created         *time.Time      `json:"created,omitempty"`
}

// ownsOrder reports whether orderID names an order user may pay for or
// inspect. Admins may see every order.
func (h *Handler) ownsOrder(c *gin.Context, user *models.User, orderID string) (bool, error) {
	id, err := strconv.ParseUint(orderID, 10, 64)
	if err != nil {
		return false, nil
	}
	q := h.DB.WithContext(c.Request.Context()).Model(&models.Order{}).Where("id = ?", id)
	if user.Role != models.RoleAdmin {
		q = q.Where("user_id = ?", user.ID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// POST /api/payments/create-intent
func (h *Handler) CreateIntent(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}
	if req.Currency == "" {
		req.Currency = "inr"
	}
	if req.OrderID != "" {
		ok, err := h.ownsOrder(c, user, req.OrderID)
		if err != nil {
			h.Log.Error("payment order lookup failed", zap.String("order_id", req.OrderID), zap.Error(err))
			response.ServerError(c, "Error creating payment intent")
			return
		}
		if !ok {
			response.NotFound(c, "Order not found")
			return
		}
	}

	intent, err := h.Gateway.CreateIntent(c.Request.Context(), payments.CreateParams{
		Amount:   req.Amount,
		Currency: req.Currency,
		UserID:   user.ID,
		OrderID:  req.OrderID,
	})
	if err != nil {
		h.Log.Error("create payment intent failed", zap.Uint("user_id", user.ID), zap.Error(err))
		response.ServerError(c, "Error creating payment intent")
		return
	}
	response.OK(c, gin.H{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

// POST /api/payments/confirm
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	intent, err := h.Gateway.Retrieve(c.Request.Context(), req.PaymentIntentID)
	if errors.Is(err, payments.ErrNotFound) {
		response.NotFound(c, "Payment not found")
		return
	}
	if err != nil {
		h.Log.Error("payment confirmation failed", zap.String("intent_id", req.PaymentIntentID), zap.Error(err))
		response.ServerError(c, "Error confirming payment")
		return
	}
	if !intent.Succeeded() {
		response.BadRequest(c, "Payment not completed")
		return
	}
	response.OKMessage(c, "Payment confirmed successfully", intentView{
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Status:          intent.Status,
	})
}

// GET /api/payments/:orderId
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	user := auth.CurrentUser(c)
	orderID := c.Param("orderId")

	ok, err := h.ownsOrder(c, user, orderID)
	if err != nil {
		h.Log.Error("payment order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		response.ServerError(c, "Error retrieving payment status")
		return
	}
	if !ok {
		response.NotFound(c, "Payment not found")
		return
	}

	intent, err := h.Gateway.FindByOrder(c.Request.Context(), orderID)
	if errors.Is(err, payments.ErrNotFound) {
		response.NotFound(c, "Payment not found")
		return
	}
	if err != nil {
		h.Log.Error("payment status failed", zap.String("order_id", orderID), zap.Error(err))
		response.ServerError(c, "Error retrieving payment status")
		return
	}
	response.OK(c, intentView{
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Status:          intent.Status,
		Created:         &intent.Created,
	})
}

// POST /api/payments/webhook
//
// Unknown orders are acknowledged so the processor stops redelivering;
// storage errors answer 500 so it retries.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "Webhook Error: unreadable body")
		return
	}
	evt, err := h.Gateway.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.Log.Warn("webhook rejected", zap.Error(err))
		response.BadRequest(c, "Webhook Error: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	h.Metrics.PaymentEvent(ctx, evt.Type)
	log := h.Log.With(zap.String("event_id", evt.ID), zap.String("event_type", evt.Type))

	if evt.Intent == nil {
		log.Info("unhandled webhook event")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	log = log.With(zap.String("intent_id", evt.Intent.ID))

	orderID, err := strconv.ParseUint(evt.Intent.OrderID(), 10, 64)
	if err != nil {
		log.Info("payment not tied to an order")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	switch evt.Type {
	case payments.EventSucceeded:
		var order *models.Order
		order, err = orderControllers.MarkPaid(ctx, h.DB, uint(orderID), evt.Intent.ID)
		if err == nil {
			log.Info("payment succeeded", zap.Uint("order_id", order.ID))
			h.Hub.Broadcast(orderControllers.EventOrderUpdated, order)
		}
	case payments.EventFailed:
		err = orderControllers.MarkPaymentFailed(ctx, h.DB, uint(orderID))
		if err == nil {
			log.Info("payment failed", zap.Uint64("order_id", orderID))
		}
	}

	switch {
	case errors.Is(err, orderControllers.ErrOrderNotFound):
		log.Warn("webhook for unknown order", zap.Uint64("order_id", orderID))
	case err != nil:
		log.Error("webhook processing failed", zap.Uint64("order_id", orderID), zap.Error(err))
		response.ServerError(c, "Error processing webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
