package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"github.com/servana-inc/servana/internal/shared/constants"
)

// Correlation attaches a correlation id to every request so the audit
// trail can stitch an initiate and its callback together. The caller's
// X-Request-ID is honored when present.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(constants.HeaderXRequestID)
		if correlationID == "" {
			correlationID = newCorrelationID()
		}

		c.Set(constants.ContextKeyCorrelationID, correlationID)
		c.Header(constants.HeaderXRequestID, correlationID)

		c.Next()
	}
}

func newCorrelationID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
