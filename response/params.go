package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID parses a positive numeric path parameter, answering 400 when it
// is malformed.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
