// Package reviewcontroller lists and manages product reviews and keeps each
// product's rating aggregate in step with them.
package reviewcontroller

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

// reviewView is a review as the storefront renders it.
type reviewView struct {
	ID       uint      `json:"id"`
	UserID   uint      `json:"userId"`
	UserName string    `json:"userName"`
	Rating   int       `json:"rating"`
	Title    string    `json:"title"`
	Comment  string    `json:"comment"`
	Date     time.Time `json:"date"`
	Verified bool      `json:"verified"`
}

func view(r models.Review, date time.Time) reviewView {
	name := "User"
	if r.User != nil {
		name = r.User.FullName()
	}
	return reviewView{
		ID:       r.ID,
		UserID:   r.UserID,
		UserName: name,
		Rating:   r.Rating,
		Title:    r.Title,
		Comment:  r.Comment,
		Date:     date,
		Verified: true,
	}
}

// GET /api/reviews/product/:productId
func GetProductReviews(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := response.ParamID(c, "productId")
		if !ok {
			return
		}

		var product models.Product
		if err := db.Select("id", "rating", "review_count").First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "Product not found")
				return
			}
			log.Error("load product failed", zap.Uint("product_id", productID), zap.Error(err))
			response.ServerError(c, "Failed to fetch reviews")
			return
		}

		query := db.Model(&models.Review{}).Where("product_id = ? AND is_active = ?", productID, true)
		query = query.Session(&gorm.Session{})

		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Error("count reviews failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch reviews")
			return
		}

		page, limit, offset := response.Page(c, 10)
		var reviews []models.Review
		if err := query.Preload("User").Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
			log.Error("list reviews failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch reviews")
			return
		}

		out := make([]reviewView, len(reviews))
		for i, r := range reviews {
			out[i] = view(r, r.CreatedAt)
		}
		response.OK(c, gin.H{
			"reviews":       out,
			"pagination":    response.NewPagination(page, limit, total),
			"productRating": product.Rating,
			"totalReviews":  product.ReviewCount,
		})
	}
}

// POST /api/reviews
func CreateReview(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		review, rating, err := AddReview(c.Request.Context(), db, user, req)
		switch {
		case errors.Is(err, ErrProductNotFound):
			response.NotFound(c, "Product not found")
			return
		case errors.Is(err, ErrAlreadyReviewed):
			response.BadRequest(c, "You have already reviewed this product")
			return
		case err != nil:
			log.Error("add review failed", zap.Uint("product_id", req.ProductID), zap.Error(err))
			response.ServerError(c, "Error adding review")
			return
		}

		response.Created(c, "Review added successfully", gin.H{
			"review":           view(*review, review.CreatedAt),
			"newProductRating": rating,
		})
	}
}

// PUT /api/reviews/:id
func EditReview(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		var req UpdateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		review, err := UpdateReview(c.Request.Context(), db, user, id, req)
		if err != nil {
			if errors.Is(err, ErrReviewNotFound) {
				response.NotFound(c, "Review not found")
				return
			}
			log.Error("update review failed", zap.Uint("review_id", id), zap.Error(err))
			response.ServerError(c, "Error updating review")
			return
		}
		response.OKMessage(c, "Review updated successfully", gin.H{"review": view(*review, review.UpdatedAt)})
	}
}

// DELETE /api/reviews/:id
func RemoveReview(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}

		if err := DeleteReview(c.Request.Context(), db, user, id); err != nil {
			if errors.Is(err, ErrReviewNotFound) {
				response.NotFound(c, "Review not found")
				return
			}
			log.Error("delete review failed", zap.Uint("review_id", id), zap.Error(err))
			response.ServerError(c, "Error deleting review")
			return
		}
		response.OKMessage(c, "Review deleted successfully", nil)
	}
}
