package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/Ashish5180/vibe-bites/controllers/order"
	"github.com/Ashish5180/vibe-bites/middleware"
)

func orderHandler(d *Deps) *orderControllers.Handler {
	return &orderControllers.Handler{
		DB:       d.DB,
		Notifier: d.Notifier,
		Hub:      d.Hub,
		Metrics:  d.Metrics,
		Log:      d.Log,
	}
}

// SetupOrderRoutes registers the shopper's order endpoints and the admin
// status update.
func SetupOrderRoutes(api *gin.RouterGroup, d *Deps) {
	h := orderHandler(d)

	orders := api.Group("/orders", d.protect())
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.GetMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/status", middleware.AdminOnly(), h.UpdateOrderStatus)
	}
}
