package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoggerMiddleware logs request details
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		LogRequest(c.Request.Method, path, c.ClientIP(), c.Writer.Status(), latency)
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				LogError("panic recovered: %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"status":  "error",
					"message": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("RequestID", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// IdentityMiddleware reads the caller identity resolved by the upstream API
// gateway. Authentication itself happens outside this service; requests
// arriving here carry trusted X-User-ID / X-Shop-ID / X-Admin headers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := c.GetHeader("X-User-ID"); v != "" {
			if id, err := strconv.ParseUint(v, 10, 32); err == nil {
				c.Set("userID", uint(id))
			}
		}
		if v := c.GetHeader("X-Shop-ID"); v != "" {
			if id, err := strconv.ParseUint(v, 10, 32); err == nil {
				c.Set("shopID", uint(id))
			}
		}
		if c.GetHeader("X-Admin") == "true" {
			c.Set("admin", true)
		}
		c.Next()
	}
}

// RequireUser aborts when no user identity was supplied.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("userID"); !exists {
			Unauthorized(c, "User not found")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireShop aborts when no shop identity was supplied.
func RequireShop() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("shopID"); !exists {
			Unauthorized(c, "Shop not found")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts when the admin flag was not supplied.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("admin"); !exists {
			Unauthorized(c, "Admin not found")
			c.Abort()
			return
		}
		c.Next()
	}
}
