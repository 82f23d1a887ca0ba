package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/constants"
	"github.com/yukikurage/team-task-api/internal/logger"
)

const TraceHeader = "X-Trace-Id"

// Trace assigns every request a trace ID, reusing the caller's X-Trace-Id
// when present, and echoes it in the response.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = strings.ReplaceAll(uuid.New().String(), "-", "")
		}

		c.Set(constants.ContextKeyTraceID, traceID)
		c.Request = c.Request.WithContext(logger.ContextWithTraceID(c.Request.Context(), traceID))

		c.Header(TraceHeader, traceID)
		c.Next()
	}
}
