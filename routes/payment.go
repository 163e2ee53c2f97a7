package routes

import (
	"github.com/gin-gonic/gin"

	paymentcontroller "github.com/Ashish5180/vibe-bites/controllers/payment"
)

// SetupPaymentRoutes registers the card payment endpoints. The webhook is
// authenticated by its signature, not a session.
func SetupPaymentRoutes(api *gin.RouterGroup, d *Deps) {
	h := &paymentcontroller.Handler{
		DB:      d.DB,
		Gateway: d.Payments,
		Hub:     d.Hub,
		Metrics: d.Metrics,
		Log:     d.Log,
	}

	pay := api.Group("/payments")
	{
		pay.POST("/webhook", h.Webhook)

		session := pay.Group("", d.protect())
		session.POST("/create-intent", h.CreateIntent)
		session.POST("/confirm", h.Confirm)
		session.GET("/:orderId", h.GetPaymentStatus)
	}
}
