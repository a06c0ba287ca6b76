package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMetodos = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
)

// CORS answers preflights and tags responses for browser clients. With an
// empty allow list any origin is accepted; otherwise the Origin header is
// echoed only when listed and other origins get no CORS headers at all.
func CORS(origens []string) gin.HandlerFunc {
	permitidas := make(map[string]bool, len(origens))
	for _, o := range origens {
		permitidas[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origem := c.GetHeader("Origin")
		switch {
		case len(permitidas) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case permitidas[origem]:
			c.Header("Access-Control-Allow-Origin", origem)
			c.Header("Vary", "Origin")
		default:
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsMetodos)
			c.Header("Access-Control-Allow-Headers", corsHeaders)
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
