package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into ErrInternalServer on the context. It only reports the
// error; the response is rendered by ErrorHandlerMiddleware, which therefore has to wrap it.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("Recovery")
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		log.Error(logMsg, zap.String("path", c.FullPath()), zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.Abort()
	})
}

// Errors is the error rendering chain in the order it must be installed: the renderer outside,
// recovery inside.
func Errors(exposeInternal bool, logger *zap.Logger) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		ErrorHandlerMiddleware(exposeInternal, logger),
		Recovery(logger),
	}
}
