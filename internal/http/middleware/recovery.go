// README: Recovery middleware; logs the panic and answers 500 if nothing was written yet.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/logger"
)

func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = log.With("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("handler panicked")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
