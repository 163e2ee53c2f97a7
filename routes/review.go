package routes

import (
	"github.com/gin-gonic/gin"

	reviewcontroller "github.com/Ashish5180/vibe-bites/controllers/review"
)

func SetupReviewRoutes(api *gin.RouterGroup, d *Deps) {
	reviews := api.Group("/reviews")
	{
		reviews.GET("/product/:productId", reviewcontroller.GetProductReviews(d.DB, d.Log))

		session := reviews.Group("", d.protect())
		session.POST("", reviewcontroller.CreateReview(d.DB, d.Log))
		session.PUT("/:id", reviewcontroller.EditReview(d.DB, d.Log))
		session.DELETE("/:id", reviewcontroller.RemoveReview(d.DB, d.Log))
	}
}
