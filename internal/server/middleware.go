package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

const (
	// OperatorTokenHeader carries the shared secret for operator endpoints
	OperatorTokenHeader = "X-Operator-Token"
	RequestIDHeader     = "X-Request-ID"
)

var errForbidden = errors.New("operator token required")

// RequestIDMiddleware keeps the caller's X-Request-ID or assigns a new one
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = utils.GenerateID()
	}
	c.Set("request_id", id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"caller":     c.GetHeader("X-User-ID"),
		"request_id": c.GetString("request_id"),
	})
}

// OperatorTokenMiddleware rejects requests whose X-Operator-Token does not match token.
// An empty token closes the endpoint entirely.
func OperatorTokenMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(OperatorTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			utils.Warn("operator endpoint rejected", map[string]any{"path": c.Request.URL.Path})
			utils.AbortWithJSONError(c, http.StatusForbidden, errForbidden, "forbidden")
			return
		}
		c.Next()
	}
}
