package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// Page reads ?page= and ?limit=, defaulting to 1 and defaultLimit and
// clamping limit to 100. Offset is the row offset for the page.
func Page(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{CurrentPage: page, TotalPages: pages, TotalItems: total, ItemsPerPage: limit}
}
