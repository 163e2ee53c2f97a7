package productcontroller

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

// CreateProduct creates a product and its size tiers (admin).
func CreateProduct(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.Invalid(c, err)
			return
		}
		if dup := in.duplicateSize(); dup != "" {
			response.BadRequest(c, "Duplicate size label: "+dup)
			return
		}

		var product models.Product
		in.apply(&product)
		product.Sizes = in.sizes()

		if err := db.Create(&product).Error; err != nil {
			log.Error("create product failed", zap.Error(err))
			response.ServerError(c, "Error creating product")
			return
		}
		response.Created(c, "Product created", gin.H{"product": product})
	}
}
