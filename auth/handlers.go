// Package auth registers and signs in shoppers and issues their session
// tokens.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/notify"
	"github.com/Ashish5180/vibe-bites/response"
)

const (
	verificationTTL = 24 * time.Hour
	resetTTL        = time.Hour
)

type Handler struct {
	DB       *gorm.DB
	Tokens   *Tokens
	Notifier *notify.Notifier
	Log      *zap.Logger
	// AppURL is the storefront origin used in emailed links.
	AppURL string
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,strongpassword"`
	FirstName string `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string `json:"lastName" binding:"required,min=2,max=50"`
	Phone     string `json:"phone" binding:"omitempty,phone10"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2,max=50"`
	Phone     *string `json:"phone" binding:"omitempty,phone10"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,strongpassword"`
}

type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}
	email := normalizeEmail(req.Email)

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		h.Log.Error("register lookup failed", zap.Error(err))
		response.ServerError(c, "Error registering user")
		return
	}
	if count > 0 {
		response.BadRequest(c, "User with this email already exists")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		response.ServerError(c, "Error registering user")
		return
	}
	rawToken, hashedToken, err := newOneTimeToken()
	if err != nil {
		h.Log.Error("verification token failed", zap.Error(err))
		response.ServerError(c, "Error registering user")
		return
	}
	expires := time.Now().Add(verificationTTL)

	user := models.User{
		Email:                    email,
		PasswordHash:             hash,
		FirstName:                strings.TrimSpace(req.FirstName),
		LastName:                 strings.TrimSpace(req.LastName),
		Phone:                    req.Phone,
		Role:                     models.RoleUser,
		IsActive:                 true,
		EmailVerificationToken:   hashedToken,
		EmailVerificationExpires: &expires,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.BadRequest(c, "User with this email already exists")
			return
		}
		h.Log.Error("create user failed", zap.Error(err))
		response.ServerError(c, "Error registering user")
		return
	}

	h.Notifier.Dispatch(notify.VerificationEmail(user.Email, notify.LinkData{
		Name: user.FirstName,
		URL:  h.AppURL + "/verify-email?token=" + rawToken,
	}))

	token, err := h.Tokens.Issue(&user)
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		response.ServerError(c, "Error registering user")
		return
	}

	response.Created(c, "User registered successfully. Please check your email for verification.", sessionResponse{User: &user, Token: token})
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.Log.Error("login lookup failed", zap.Error(err))
		response.ServerError(c, "Error logging in")
		return
	}
	if !user.IsActive {
		response.Fail(c, http.StatusUnauthorized, "Account is deactivated")
		return
	}
	if !CheckPassword(user.PasswordHash, req.Password) {
		response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := h.DB.Model(&user).Update("last_login", now).Error; err != nil {
		h.Log.Warn("last login update failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	token, err := h.Tokens.Issue(&user)
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		response.ServerError(c, "Error logging in")
		return
	}
	response.OKMessage(c, "Login successful", sessionResponse{User: &user, Token: token})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	response.OK(c, CurrentUser(c))
}

// GET /api/auth/profile
func (h *Handler) Profile(c *gin.Context) {
	response.OK(c, gin.H{"user": CurrentUser(c)})
}

// PUT /api/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := h.DB.Model(user).Updates(updates).Error; err != nil {
			h.Log.Error("profile update failed", zap.Uint("user_id", user.ID), zap.Error(err))
			response.ServerError(c, "Error updating profile")
			return
		}
	}
	response.OKMessage(c, "Profile updated successfully", gin.H{"user": user})
}

// POST /api/auth/forgot-password
//
// Unlike the other emails this one is sent inline: the shopper has no other
// way to get the link, so a delivery failure is reported.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		h.Log.Error("forgot password lookup failed", zap.Error(err))
		response.ServerError(c, "Error sending password reset email")
		return
	}

	rawToken, hashedToken, err := newOneTimeToken()
	if err != nil {
		h.Log.Error("reset token failed", zap.Error(err))
		response.ServerError(c, "Error sending password reset email")
		return
	}
	expires := time.Now().Add(resetTTL)
	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"password_reset_token":   hashedToken,
		"password_reset_expires": expires,
	}).Error; err != nil {
		h.Log.Error("store reset token failed", zap.Error(err))
		response.ServerError(c, "Error sending password reset email")
		return
	}

	msg, err := notify.PasswordResetEmail(user.Email, notify.LinkData{
		Name: user.FirstName,
		URL:  h.AppURL + "/reset-password?token=" + rawToken,
	})
	if err == nil {
		err = h.Notifier.Deliver(c.Request.Context(), msg)
	}
	if err != nil {
		h.Log.Error("password reset email failed", zap.String("to", user.Email), zap.Error(err))
		response.ServerError(c, "Error sending password reset email")
		return
	}
	response.OKMessage(c, "Password reset email sent successfully", nil)
}

// POST /api/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	var user models.User
	err := h.DB.Where("password_reset_token = ? AND password_reset_expires > ?", hashToken(req.Token), time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.BadRequest(c, "Invalid or expired reset token")
			return
		}
		h.Log.Error("reset lookup failed", zap.Error(err))
		response.ServerError(c, "Error resetting password")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		response.ServerError(c, "Error resetting password")
		return
	}
	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"password_hash":          hash,
		"password_reset_token":   "",
		"password_reset_expires": nil,
	}).Error; err != nil {
		h.Log.Error("password reset failed", zap.Error(err))
		response.ServerError(c, "Error resetting password")
		return
	}
	response.OKMessage(c, "Password reset successfully", nil)
}

// POST /api/auth/verify-email
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, err)
		return
	}

	var user models.User
	err := h.DB.Where("email_verification_token = ? AND email_verification_expires > ?", hashToken(req.Token), time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.BadRequest(c, "Invalid or expired verification token")
			return
		}
		h.Log.Error("verification lookup failed", zap.Error(err))
		response.ServerError(c, "Error verifying email")
		return
	}

	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"is_email_verified":          true,
		"email_verification_token":   "",
		"email_verification_expires": nil,
	}).Error; err != nil {
		h.Log.Error("verify email failed", zap.Error(err))
		response.ServerError(c, "Error verifying email")
		return
	}
	response.OKMessage(c, "Email verified successfully", nil)
}

// POST /api/auth/logout. Tokens are stateless; the client drops its copy.
func (h *Handler) Logout(c *gin.Context) {
	response.OKMessage(c, "Logged out successfully", nil)
}
