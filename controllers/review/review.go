package reviewcontroller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("already reviewed")
)

type CreateReviewRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title" binding:"required,min=5,max=100"`
	Comment   string `json:"comment" binding:"required,min=10,max=500"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Title   *string `json:"title" binding:"omitempty,min=5,max=100"`
	Comment *string `json:"comment" binding:"omitempty,min=10,max=500"`
}

// AddReview stores the user's only review of a product and folds its rating
// into the product's running mean in the same transaction.
func AddReview(ctx context.Context, db *gorm.DB, user *models.User, req CreateReviewRequest) (*models.Review, float64, error) {
	var (
		review    models.Review
		newRating float64
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("load product: %w", err)
		}

		// Deactivated reviews still count: one review per user and product, ever.
		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("product_id = ? AND user_id = ?", req.ProductID, user.ID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing review: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyReviewed
		}

		review = models.Review{
			ProductID: req.ProductID,
			UserID:    user.ID,
			Rating:    req.Rating,
			Title:     strings.TrimSpace(req.Title),
			Comment:   strings.TrimSpace(req.Comment),
			IsActive:  true,
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", req.ProductID).UpdateColumns(map[string]any{
			"rating":       gorm.Expr("(rating * review_count + ?) / (review_count + 1)", float64(req.Rating)),
			"review_count": gorm.Expr("review_count + 1"),
		}).Error; err != nil {
			return fmt.Errorf("update product rating: %w", err)
		}

		var updated models.Product
		if err := tx.Select("rating").First(&updated, req.ProductID).Error; err != nil {
			return fmt.Errorf("reload product rating: %w", err)
		}
		newRating = updated.Rating
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	review.User = user
	return &review, newRating, nil
}

// UpdateReview edits the user's own review and recomputes the product rating.
func UpdateReview(ctx context.Context, db *gorm.DB, user *models.User, id uint, req UpdateReviewRequest) (*models.Review, error) {
	var review models.Review
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("load review: %w", err)
		}

		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Title != nil {
			review.Title = strings.TrimSpace(*req.Title)
		}
		if req.Comment != nil {
			review.Comment = strings.TrimSpace(*req.Comment)
		}
		if err := tx.Save(&review).Error; err != nil {
			return fmt.Errorf("save review: %w", err)
		}
		return RecomputeRating(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}
	review.User = user
	return &review, nil
}

// DeleteReview deactivates the user's own review and recomputes the product
// rating.
func DeleteReview(ctx context.Context, db *gorm.DB, user *models.User, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("id = ? AND user_id = ? AND is_active = ?", id, user.ID, true).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("load review: %w", err)
		}
		if err := tx.Model(&review).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate review: %w", err)
		}
		return RecomputeRating(tx, review.ProductID)
	})
}

// RecomputeRating sets the product's rating and review count from its
// active reviews.
func RecomputeRating(tx *gorm.DB, productID uint) error {
	var agg struct {
		Mean  float64
		Count int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS mean, COUNT(*) AS count").
		Where("product_id = ? AND is_active = ?", productID, true).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("aggregate reviews: %w", err)
	}
	return tx.Model(&models.Product{}).Where("id = ?", productID).UpdateColumns(map[string]any{
		"rating":       agg.Mean,
		"review_count": agg.Count,
	}).Error
}
