package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/Ashish5180/vibe-bites/models"
)

const userKey = "user"

// SetUser stores the authenticated user on the request.
func SetUser(c *gin.Context, u *models.User) {
	c.Set(userKey, u)
}

// CurrentUser returns the user stored by the Protect middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
