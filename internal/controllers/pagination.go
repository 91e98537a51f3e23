package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 10

type pagination struct {
	Page  int
	Limit int
	Skip  int
}

// getPagination reads ?page= and ?limit=, falling back to page 1 of 10 for
// missing or nonsense values.
func getPagination(c *gin.Context) pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	return pagination{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// respondList writes list under "data". When the request asks for a page, only
// that slice is written, along with the page counters.
func respondList[T any](c *gin.Context, list []T) {
	if c.Query("page") == "" && c.Query("limit") == "" {
		c.JSON(http.StatusOK, gin.H{"data": list})
		return
	}
	p := getPagination(c)
	total := len(list)
	start := min(p.Skip, total)
	end := min(start+p.Limit, total)
	c.JSON(http.StatusOK, gin.H{
		"data":        list[start:end],
		"page":        p.Page,
		"limit":       p.Limit,
		"total_count": total,
		"total_pages": (total + p.Limit - 1) / p.Limit,
	})
}
