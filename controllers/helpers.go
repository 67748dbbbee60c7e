package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the user identity set by the identity middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// currentShopID reads the shop identity set by the identity middleware.
func currentShopID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("shopID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
