package productcontroller

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/pricing"
	"github.com/Ashish5180/vibe-bites/response"
)

// minTierPrice is the cheapest tier of the product row in scope.
const minTierPrice = "(SELECT MIN(ps.price) FROM product_sizes ps WHERE ps.product_id = products.id)"

var sortOrders = map[string]string{
	"newest":     "products.created_at DESC",
	"oldest":     "products.created_at ASC",
	"name":       "products.name ASC",
	"rating":     "products.rating DESC",
	"price-asc":  minTierPrice + " ASC",
	"price-desc": minTierPrice + " DESC",
}

// GetProducts lists active products.
// Query: search, category, minPrice, maxPrice (over the cheapest tier),
// sort (newest|oldest|name|rating|price-asc|price-desc), page, limit.
func GetProducts(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Product{}).Where("products.is_active = ?", true)

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
		}

		if category := c.Query("category"); category != "" {
			if !pricing.IsCategory(category) {
				response.BadRequest(c, "Invalid category")
				return
			}
			query = query.Where("products.category = ?", category)
		}

		for param, op := range map[string]string{"minPrice": ">=", "maxPrice": "<="} {
			raw := c.Query(param)
			if raw == "" {
				continue
			}
			v, err := decimal.NewFromString(raw)
			if err != nil {
				response.BadRequest(c, "Invalid "+param)
				return
			}
			query = query.Where(minTierPrice+" "+op+" ?", v.InexactFloat64())
		}

		order, ok := sortOrders[c.DefaultQuery("sort", "newest")]
		if !ok {
			response.BadRequest(c, "Invalid sort")
			return
		}

		query = query.Session(&gorm.Session{})
		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Error("count products failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch products")
			return
		}

		page, limit, offset := response.Page(c, 12)
		var products []models.Product
		if err := query.Preload("Sizes").Order(order).Offset(offset).Limit(limit).Find(&products).Error; err != nil {
			log.Error("list products failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch products")
			return
		}

		response.OK(c, gin.H{
			"products":   products,
			"pagination": response.NewPagination(page, limit, total),
		})
	}
}
