package routes

import (
	"github.com/gin-gonic/gin"

	productcontroller "github.com/Ashish5180/vibe-bites/controllers/product"
	"github.com/Ashish5180/vibe-bites/middleware"
)

// SetupCatalogRoutes registers the public product listing and the category
// endpoints. Product writes live under /api/admin.
func SetupCatalogRoutes(api *gin.RouterGroup, d *Deps) {
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB, d.Log))
		products.GET("/:id", productcontroller.GetProductByID(d.DB, d.Log))
	}

	categories := api.Group("/categories")
	{
		categories.GET("", productcontroller.GetActiveCategories(d.DB, d.Log))

		admin := categories.Group("", d.protect(), middleware.AdminOnly())
		admin.GET("/all", productcontroller.GetAllCategories(d.DB, d.Log))
		admin.POST("", productcontroller.CreateCategory(d.DB, d.Log))
		admin.PUT("/:id", productcontroller.UpdateCategory(d.DB, d.Log))
		admin.PATCH("/:id/status", productcontroller.SetCategoryStatus(d.DB, d.Log))
		admin.DELETE("/:id", productcontroller.DeleteCategory(d.DB, d.Log))
	}
}
