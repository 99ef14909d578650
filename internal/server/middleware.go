package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderUserID carries the authenticated user identity, injected by
	// the upstream auth gateway.
	HeaderUserID = "X-User-ID"

	contextUserIDKey = "user_id"
)

// UserRequired extracts the caller's identity from the gateway header.
func UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextUserIDKey, snowflake.ID(id))
		c.Next()
	}
}

func userID(c *gin.Context) snowflake.ID {
	id, _ := c.Get(contextUserIDKey)
	uid, _ := id.(snowflake.ID)
	return uid
}

// RequestLogger logs one line per request with latency and status.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			log.Warn("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
