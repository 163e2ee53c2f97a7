package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/cartstore"
	orderControllers "github.com/Ashish5180/vibe-bites/controllers/order"
	"github.com/Ashish5180/vibe-bites/middleware"
	"github.com/Ashish5180/vibe-bites/notify"
	"github.com/Ashish5180/vibe-bites/payments"
	"github.com/Ashish5180/vibe-bites/telemetry"
)

// Deps is everything the route groups hand to their controllers.
type Deps struct {
	DB          *gorm.DB
	Log         *zap.Logger
	Tokens      *auth.Tokens
	Notifier    *notify.Notifier
	Hub         *orderControllers.Hub
	Payments    payments.Gateway
	Carts       cartstore.Store
	Metrics     *telemetry.Metrics
	AuthLimiter *middleware.RateLimiter
	CORSOrigin  string
	ClientURL   string
}

func (d *Deps) protect() gin.HandlerFunc {
	return middleware.Protect(d.Tokens, d.DB, d.Log)
}

// NewRouter builds the engine with the global middleware and every route
// group mounted under /api.
func NewRouter(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 8 << 20

	SetupRoutes(r, d)
	return r
}

// SetupRoutes is the single entry point that wires every route group.
func SetupRoutes(r *gin.Engine, d *Deps) {
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
	})

	SetupAuthRoutes(api, d)
	SetupCatalogRoutes(api, d)
	SetupCouponRoutes(api, d)
	SetupOrderRoutes(api, d)
	SetupPaymentRoutes(api, d)
	SetupReviewRoutes(api, d)
	SetupUserRoutes(api, d)
	SetupAdminRoutes(api, d)
}
