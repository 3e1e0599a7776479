package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestID tags each request with an id (reusing the caller's when given)
// and stores a request-scoped logrus entry in the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set("request_id", requestID)
		c.Set(loggerKey, logrus.WithField("request_id", requestID))
		c.Next()
	}
}

// Logger returns the request-scoped entry, or the standard logger's.
func Logger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func entryWith(v any, key string, value any) *logrus.Entry {
	if entry, ok := v.(*logrus.Entry); ok {
		return entry.WithField(key, value)
	}
	return logrus.WithField(key, value)
}
