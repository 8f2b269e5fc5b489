package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseUint extracts a uint64 path parameter, writing a 400 response and
// returning ok=false on failure.
func parseUint(c *gin.Context, param string) (uint64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}
