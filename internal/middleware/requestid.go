package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader propagates the request identifier between caller and server.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key under which the request ID string is
	// stored so handlers and the logger can read it without parsing headers.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware tags every request with a unique identifier.
//
// An inbound X-Request-ID (set by a load balancer or the caller) is reused
// unchanged; otherwise a fresh UUID v4 is generated. The value is stored in
// gin.Context under RequestIDKey and echoed back in the response header so a
// caller reporting a failed download can be matched to the server-side log
// entries and the stream session that produced it.
//
// Register it before the logger so every log line carries the ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
