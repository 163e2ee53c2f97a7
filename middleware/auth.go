package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/response"
)

func bearerToken(c *gin.Context) string {
	if raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return raw
	}
	// Browsers cannot set headers on a websocket handshake.
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

// Protect requires a valid bearer token for an existing, active user and
// stores that user on the request.
func Protect(tokens *auth.Tokens, db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.Fail(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Fail(c, http.StatusUnauthorized, "Not authorized, user not found")
				return
			}
			log.Error("load session user failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
			response.ServerError(c, "Server error")
			return
		}
		if !user.IsActive {
			response.Fail(c, http.StatusUnauthorized, "Account is deactivated")
			return
		}

		auth.SetUser(c, &user)
		c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := auth.CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			response.Fail(c, http.StatusForbidden, "Not authorized as admin")
			return
		}
		c.Next()
	}
}
