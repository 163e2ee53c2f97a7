package productcontroller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

// GetProductByID returns one active product with its tiers.
// URL param: /products/:id
func GetProductByID(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}

		var product models.Product
		if err := db.Preload("Sizes").Where("is_active = ?", true).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Product not found")
				return
			}
			log.Error("get product failed", zap.Uint("product_id", id), zap.Error(err))
			response.ServerError(c, "Failed to retrieve product")
			return
		}
		response.OK(c, gin.H{"product": product})
	}
}
