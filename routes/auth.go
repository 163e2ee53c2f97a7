package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ashish5180/vibe-bites/auth"
)

// SetupAuthRoutes registers all "/api/auth/*" endpoints. The credential
// endpoints share the per-IP rate limiter.
func SetupAuthRoutes(api *gin.RouterGroup, d *Deps) {
	h := &auth.Handler{
		DB:       d.DB,
		Tokens:   d.Tokens,
		Notifier: d.Notifier,
		Log:      d.Log,
		AppURL:   d.ClientURL,
	}

	authGroup := api.Group("/auth")
	{
		limited := authGroup.Group("", d.AuthLimiter.Middleware())
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)
		limited.POST("/forgot-password", h.ForgotPassword)
		limited.POST("/reset-password", h.ResetPassword)
		limited.POST("/verify-email", h.VerifyEmail)

		session := authGroup.Group("", d.protect())
		session.GET("/me", h.Me)
		session.GET("/profile", h.Profile)
		session.PUT("/profile", h.UpdateProfile)
		session.POST("/logout", h.Logout)
	}
}
