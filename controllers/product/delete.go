package productcontroller

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

// DeleteProduct soft deletes a product (admin). Order snapshots keep their
// copy of name and price, so history is unaffected.
func DeleteProduct(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}

		result := db.Delete(&models.Product{}, id)
		if result.Error != nil {
			log.Error("delete product failed", zap.Uint("product_id", id), zap.Error(result.Error))
			response.ServerError(c, "Error deleting product")
			return
		}
		if result.RowsAffected == 0 {
			response.NotFound(c, "Product not found")
			return
		}
		response.OKMessage(c, "Product deleted successfully", nil)
	}
}
