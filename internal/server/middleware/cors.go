package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORS разрешает кросс-доменные запросы с перечисленных origin.
// "*" в списке разрешает любой origin. Preflight (OPTIONS) отвечает 204.
func CORS(allowed []string) gin.HandlerFunc {
	anyOrigin := lo.Contains(allowed, "*")
	set := lo.Associate(allowed, func(o string) (string, struct{}) {
		return strings.TrimSuffix(o, "/"), struct{}{}
	})

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := set[strings.TrimSuffix(origin, "/")]
			switch {
			case anyOrigin:
				c.Header("Access-Control-Allow-Origin", "*")
			case ok:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
