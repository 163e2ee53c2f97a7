package productcontroller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

// UpdateProduct replaces a product's fields and tiers (admin). Existing tiers
// keep their row (and so their id) when the label is unchanged; labels no
// longer present are removed.
func UpdateProduct(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}

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
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Preload("Sizes").First(&product, id).Error; err != nil {
				return err
			}
			in.apply(&product)
			if err := tx.Omit("Sizes").Save(&product).Error; err != nil {
				return err
			}
			sizes, err := replaceSizes(tx, &product, in.sizes())
			if err != nil {
				return err
			}
			product.Sizes = sizes
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Product not found")
				return
			}
			log.Error("update product failed", zap.Uint("product_id", id), zap.Error(err))
			response.ServerError(c, "Error updating product")
			return
		}
		response.OKMessage(c, "Product updated", gin.H{"product": product})
	}
}

func replaceSizes(tx *gorm.DB, product *models.Product, next []models.ProductSize) ([]models.ProductSize, error) {
	keep := make([]string, 0, len(next))
	for i := range next {
		next[i].ProductID = product.ID
		if cur := product.SizeFor(next[i].Size); cur != nil {
			next[i].ID = cur.ID
		}
		if err := tx.Save(&next[i]).Error; err != nil {
			return nil, err
		}
		keep = append(keep, next[i].Size)
	}
	if err := tx.Where("product_id = ? AND size NOT IN ?", product.ID, keep).
		Delete(&models.ProductSize{}).Error; err != nil {
		return nil, err
	}
	return next, nil
}
