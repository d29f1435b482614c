package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderClientID  = "X-Client-Id"
	ctxKeyClientID  = "client_id"
	maxClientIDSize = 64
)

// AttachClientID identifies anonymous clients. Missing or malformed ids are replaced
// with a fresh one, echoed back so the client can reuse it.
func AttachClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if id == "" || len(id) > maxClientIDSize {
			id = uuid.NewString()
		} else if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxKeyClientID, id)
		c.Writer.Header().Set(HeaderClientID, id)
		c.Next()
	}
}

func ClientIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyClientID)
}
