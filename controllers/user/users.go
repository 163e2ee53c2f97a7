// Package userControllers is the admin view of shopper accounts.
package userControllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

type UpdateStatusInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type UpdateRoleInput struct {
	Role models.Role `json:"role" binding:"required,oneof=user admin"`
}

type userSummary struct {
	models.User
	OrderCount int64 `json:"orderCount"`
}

// GET /api/admin/users
func GetAllUsers(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := response.Page(c, 20)

		query := db.WithContext(c.Request.Context()).Model(&models.User{})
		if s := strings.ToLower(strings.TrimSpace(c.Query("search"))); s != "" {
			like := "%" + s + "%"
			query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
		}
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}

		var total int64
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			log.Error("count users failed", zap.Error(err))
			response.ServerError(c, "Error fetching users")
			return
		}

		var users []models.User
		if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
			log.Error("list users failed", zap.Error(err))
			response.ServerError(c, "Error fetching users")
			return
		}

		response.OK(c, gin.H{
			"users":      users,
			"pagination": response.NewPagination(page, limit, total),
		})
	}
}

// GET /api/admin/users/:id
func GetUser(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}

		user, ok := loadUser(c, db, log, id)
		if !ok {
			return
		}

		var orders int64
		if err := db.WithContext(c.Request.Context()).Model(&models.Order{}).Where("user_id = ?", id).Count(&orders).Error; err != nil {
			log.Error("count user orders failed", zap.Uint("user_id", id), zap.Error(err))
			response.ServerError(c, "Error fetching user")
			return
		}
		response.OK(c, gin.H{"user": userSummary{User: *user, OrderCount: orders}})
	}
}

// PATCH /api/admin/users/:id/status
func UpdateUserStatus(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		var input UpdateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Invalid(c, err)
			return
		}
		if id == auth.CurrentUser(c).ID && !*input.IsActive {
			response.BadRequest(c, "You cannot deactivate your own account")
			return
		}

		user, ok := loadUser(c, db, log, id)
		if !ok {
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(user).Update("is_active", *input.IsActive).Error; err != nil {
			log.Error("update user status failed", zap.Uint("user_id", id), zap.Error(err))
			response.ServerError(c, "Error updating user")
			return
		}
		log.Info("user status changed", zap.Uint("user_id", id), zap.Bool("active", *input.IsActive))
		response.OKMessage(c, "User status updated successfully", gin.H{"user": user})
	}
}

// PATCH /api/admin/users/:id/role
func UpdateUserRole(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		var input UpdateRoleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Invalid(c, err)
			return
		}
		if id == auth.CurrentUser(c).ID && input.Role != models.RoleAdmin {
			response.BadRequest(c, "You cannot remove your own admin role")
			return
		}

		user, ok := loadUser(c, db, log, id)
		if !ok {
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(user).Update("role", input.Role).Error; err != nil {
			log.Error("update user role failed", zap.Uint("user_id", id), zap.Error(err))
			response.ServerError(c, "Error updating user")
			return
		}
		log.Info("user role changed", zap.Uint("user_id", id), zap.String("role", string(input.Role)))
		response.OKMessage(c, "User role updated successfully", gin.H{"user": user})
	}
}

func loadUser(c *gin.Context, db *gorm.DB, log *zap.Logger, id uint) (*models.User, bool) {
	var user models.User
	if err := db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "User not found")
			return nil, false
		}
		log.Error("load user failed", zap.Uint("user_id", id), zap.Error(err))
		response.ServerError(c, "Error fetching user")
		return nil, false
	}
	return &user, true
}
