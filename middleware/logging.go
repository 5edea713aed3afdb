package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stock-dashboard/logger"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or mints a new one and puts it
// on the request context for logger.ErrorContext.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			{Key: "method", Value: c.Request.Method},
			{Key: "path", Value: c.Request.URL.Path},
			{Key: "status", Value: c.Writer.Status()},
			{Key: "latency", Value: time.Since(start).String()},
			{Key: "request_id", Value: logger.RequestID(c.Request.Context())},
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.Field{Key: "errors", Value: c.Errors.String()})
		}
		if c.Writer.Status() >= 500 {
			log.Warn("request failed", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
