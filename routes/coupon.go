package routes

import (
	"github.com/gin-gonic/gin"

	couponcontroller "github.com/Ashish5180/vibe-bites/controllers/coupon"
	"github.com/Ashish5180/vibe-bites/middleware"
)

func SetupCouponRoutes(api *gin.RouterGroup, d *Deps) {
	coupons := api.Group("/coupons")
	{
		coupons.GET("", couponcontroller.GetActiveCoupons(d.DB, d.Log))
		coupons.POST("/validate", d.protect(), couponcontroller.ValidateCoupon(d.DB, d.Log))

		admin := coupons.Group("", d.protect(), middleware.AdminOnly())
		admin.GET("/all", couponcontroller.GetAllCoupons(d.DB, d.Log))
		admin.POST("", couponcontroller.CreateCoupon(d.DB, d.Log))
		admin.PUT("/:id", couponcontroller.UpdateCoupon(d.DB, d.Log))
		admin.DELETE("/:id", couponcontroller.DeleteCoupon(d.DB, d.Log))
	}
}
