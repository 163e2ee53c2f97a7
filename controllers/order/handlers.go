// Package orderControllers places orders, serves order history and drives
// the fulfilment status machine.
package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	couponcontroller "github.com/Ashish5180/vibe-bites/controllers/coupon"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/notify"
	"github.com/Ashish5180/vibe-bites/pricing"
	"github.com/Ashish5180/vibe-bites/response"
	"github.com/Ashish5180/vibe-bites/telemetry"
)

const orderDateLayout = "02 Jan 2006"

type Handler struct {
	DB       *gorm.DB
	Notifier *notify.Notifier
	Hub      *Hub
	Metrics  *telemetry.Metrics
	Log      *zap.Logger
}

var orderStatuses = map[string]bool{
	string(models.OrderStatusPending):    true,
	string(models.OrderStatusConfirmed):  true,
	string(models.OrderStatusProcessing): true,
	string(models.OrderStatusShipped):    true,
	string(models.OrderStatusDelivered):  true,
	string(models.OrderStatusCancelled):  true,
	string(models.OrderStatusReturned):   true,
}

// -------- Handlers --------

// POST /api/orders
func (h *Handler) PlaceOrder(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	order, err := PlaceOrder(c.Request.Context(), h.DB, user, req)
	var itemErr *ItemError
	switch {
	case errors.As(err, &itemErr):
		response.BadRequest(c, itemErr.Error())
		return
	case errors.Is(err, couponcontroller.ErrCouponNotFound):
		response.BadRequest(c, "Invalid coupon code")
		return
	case errors.Is(err, pricing.ErrCouponNotApplicable):
		response.BadRequest(c, "Coupon cannot be applied to this order")
		return
	case err != nil:
		h.Log.Error("place order failed", zap.Uint("user_id", user.ID), zap.Error(err))
		response.ServerError(c, "Error creating order")
		return
	}

	h.Log.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", user.ID),
		zap.String("total", order.Total.StringFixed(2)))
	h.Metrics.OrderPlaced(c.Request.Context(), order.Total, string(order.PaymentMethod), order.CouponCode)
	h.Hub.Broadcast(EventOrderCreated, order)
	h.Notifier.Dispatch(notify.OrderConfirmationEmail(user.Email, notify.OrderData{
		Name:        user.FirstName,
		OrderNumber: order.OrderNumber,
		OrderDate:   order.CreatedAt.Format(orderDateLayout),
		Total:       order.Total.StringFixed(2),
	}))

	response.Created(c, "Order created successfully", gin.H{"order": order})
}

// GET /api/orders?page=&limit=&status=
func (h *Handler) GetMyOrders(c *gin.Context) {
	user := auth.CurrentUser(c)
	h.list(c, h.DB.Where("user_id = ?", user.ID), 10)
}

// GET /api/admin/orders?page=&limit=&status=
func (h *Handler) GetAllOrders(c *gin.Context) {
	h.list(c, h.DB, 20, "User")
}

func (h *Handler) list(c *gin.Context, scope *gorm.DB, defaultLimit int, preloads ...string) {
	query := scope.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		if !orderStatuses[status] {
			response.BadRequest(c, "Invalid order status")
			return
		}
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.Log.Error("count orders failed", zap.Error(err))
		response.ServerError(c, "Failed to fetch orders")
		return
	}

	page, limit, offset := response.Page(c, defaultLimit)
	find := query.Preload("Items")
	for _, p := range preloads {
		find = find.Preload(p)
	}
	var orders []models.Order
	if err := find.
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		h.Log.Error("list orders failed", zap.Error(err))
		response.ServerError(c, "Failed to fetch orders")
		return
	}

	response.OK(c, gin.H{
		"orders":     orders,
		"pagination": response.NewPagination(page, limit, total),
	})
}

// GET /api/orders/:id. Only the owner sees an order.
func (h *Handler) GetOrder(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	err := h.DB.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Order not found")
			return
		}
		h.Log.Error("get order failed", zap.Uint("order_id", id), zap.Error(err))
		response.ServerError(c, "Failed to fetch order")
		return
	}
	response.OK(c, gin.H{"order": order})
}

// PUT /api/orders/:id/status (admin)
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	order, err := UpdateStatus(c.Request.Context(), h.DB, id, req)
	var transitionErr *TransitionError
	switch {
	case errors.Is(err, ErrOrderNotFound):
		response.NotFound(c, "Order not found")
		return
	case errors.As(err, &transitionErr):
		response.BadRequest(c, transitionErr.Error())
		return
	case errors.Is(err, ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, "Order was updated concurrently, please retry")
		return
	case err != nil:
		h.Log.Error("update order status failed", zap.Uint("order_id", id), zap.Error(err))
		response.ServerError(c, "Error updating order status")
		return
	}

	h.Log.Info("order status updated", zap.String("order_number", order.OrderNumber), zap.String("status", string(order.Status)))
	h.Hub.Broadcast(EventOrderUpdated, order)

	if order.Status == models.OrderStatusShipped && order.User != nil {
		d := notify.ShipmentData{
			Name:           order.ShippingAddress.FirstName,
			OrderNumber:    order.OrderNumber,
			TrackingNumber: order.ShippingDetails.TrackingNumber,
			Carrier:        order.ShippingDetails.Carrier,
		}
		if eta := order.ShippingDetails.EstimatedDelivery; eta != nil {
			d.EstimatedDelivery = eta.Format(orderDateLayout)
		}
		h.Notifier.Dispatch(notify.OrderShippedEmail(order.User.Email, d))
	}

	response.OKMessage(c, "Order status updated successfully", gin.H{"order": order})
}
