package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/Ashish5180/vibe-bites/controllers/cart"
	productcontroller "github.com/Ashish5180/vibe-bites/controllers/product"
	userControllers "github.com/Ashish5180/vibe-bites/controllers/user"
	"github.com/Ashish5180/vibe-bites/middleware"
)

// SetupAdminRoutes registers all "/api/admin/*" endpoints. Requires an
// admin session.
func SetupAdminRoutes(api *gin.RouterGroup, d *Deps) {
	adminGroup := api.Group("/admin", d.protect(), middleware.AdminOnly())
	{
		users := adminGroup.Group("/users")
		{
			users.GET("", userControllers.GetAllUsers(d.DB, d.Log))
			users.GET("/:id", userControllers.GetUser(d.DB, d.Log))
			users.PATCH("/:id/status", userControllers.UpdateUserStatus(d.DB, d.Log))
			users.PATCH("/:id/role", userControllers.UpdateUserRole(d.DB, d.Log))
			users.GET("/:id/cart", cartControllers.GetUserCart(d.Carts, d.Log))
		}

		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productcontroller.GetProducts(d.DB, d.Log))
			productAdmin.POST("", productcontroller.CreateProduct(d.DB, d.Log))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.DB, d.Log))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(d.DB, d.Log))
			productAdmin.GET("/export", productcontroller.ExportProductsToExcel(d.DB, d.Log))
			productAdmin.POST("/import", productcontroller.ImportProductsFromExcel(d.DB, d.Log))
		}

		h := orderHandler(d)
		orders := adminGroup.Group("/orders")
		{
			orders.GET("", h.GetAllOrders)
			orders.GET("/ws", d.Hub.Serve)
		}
	}
}
