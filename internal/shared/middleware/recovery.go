package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/uniedit/apiclient/internal/shared/logger"
	"github.com/uniedit/apiclient/internal/shared/response"
	"go.uber.org/zap"
)

// Recovery returns a middleware that recovers from panics.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.FromContext(c.Request.Context()).Error("panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.Stack("stack"),
				)

				response.InternalError(c)
				c.Abort()
			}
		}()
		c.Next()
	}
}
