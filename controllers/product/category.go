package productcontroller

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=300"`
	Image       string `json:"image" binding:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=50"`
	Description *string `json:"description" binding:"omitempty,max=300"`
	Image       *string `json:"image" binding:"omitempty,url"`
	IsActive    *bool   `json:"isActive"`
}

type CategoryStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// GetActiveCategories lists active categories by name.
func GetActiveCategories(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
			log.Error("list categories failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch categories")
			return
		}
		response.OK(c, gin.H{"categories": categories})
	}
}

// GetAllCategories lists every category, newest first (admin).
func GetAllCategories(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Order("created_at DESC").Find(&categories).Error; err != nil {
			log.Error("list all categories failed", zap.Error(err))
			response.ServerError(c, "Failed to fetch categories")
			return
		}
		response.OK(c, gin.H{"categories": categories})
	}
}

func CreateCategory(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		var count int64
		if err := db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			log.Error("category lookup failed", zap.Error(err))
			response.ServerError(c, "Error creating category")
			return
		}
		if count > 0 {
			response.BadRequest(c, "Category already exists")
			return
		}

		category := models.Category{
			Name:        name,
			Description: req.Description,
			Image:       req.Image,
			IsActive:    true,
		}
		if err := db.Create(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				response.BadRequest(c, "Category already exists")
				return
			}
			log.Error("create category failed", zap.Error(err))
			response.ServerError(c, "Error creating category")
			return
		}
		response.Created(c, "Category created", gin.H{"category": category})
	}
}

func UpdateCategory(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		category, ok := loadCategory(c, db, log, id)
		if !ok {
			return
		}

		if req.Name != nil {
			category.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			category.Description = *req.Description
		}
		if req.Image != nil {
			category.Image = *req.Image
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}

		if err := db.Save(category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				response.BadRequest(c, "Category already exists")
				return
			}
			log.Error("update category failed", zap.Uint("category_id", id), zap.Error(err))
			response.ServerError(c, "Error updating category")
			return
		}
		response.OKMessage(c, "Category updated", gin.H{"category": category})
	}
}

// SetCategoryStatus is PATCH /:id/status.
func SetCategoryStatus(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		var req CategoryStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Invalid(c, err)
			return
		}

		category, ok := loadCategory(c, db, log, id)
		if !ok {
			return
		}
		if err := db.Model(category).Update("is_active", *req.IsActive).Error; err != nil {
			log.Error("category status failed", zap.Uint("category_id", id), zap.Error(err))
			response.ServerError(c, "Error updating category")
			return
		}
		response.OKMessage(c, "Status updated", gin.H{"category": category})
	}
}

// DeleteCategory removes the row. Products store the category by name and
// are left alone.
func DeleteCategory(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		result := db.Delete(&models.Category{}, id)
		if result.Error != nil {
			log.Error("delete category failed", zap.Uint("category_id", id), zap.Error(result.Error))
			response.ServerError(c, "Error deleting category")
			return
		}
		if result.RowsAffected == 0 {
			response.NotFound(c, "Category not found")
			return
		}
		response.OKMessage(c, "Category deleted", nil)
	}
}

func loadCategory(c *gin.Context, db *gorm.DB, log *zap.Logger, id uint) (*models.Category, bool) {
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Category not found")
			return nil, false
		}
		log.Error("load category failed", zap.Uint("category_id", id), zap.Error(err))
		response.ServerError(c, "Error loading category")
		return nil, false
	}
	return &category, true
}
