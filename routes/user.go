package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/Ashish5180/vibe-bites/controllers/cart"
)

// SetupUserRoutes registers the signed-in shopper's cart mirror.
func SetupUserRoutes(api *gin.RouterGroup, d *Deps) {
	cartGroup := api.Group("/cart", d.protect())
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts, d.Log))
		cartGroup.PUT("/sync", cartControllers.SyncCart(d.Carts, d.Log))
		cartGroup.DELETE("", cartControllers.ClearCart(d.Carts, d.Log))
	}
}
