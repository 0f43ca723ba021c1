package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/features/auth"
)

// Logger пишет одну строку на запрос после его завершения.
// Уровень по статусу: 5xx пишем в Error, 4xx в Warn, остальное в Debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":   c.Request.Method,
			"route":    routeOf(c),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Microsecond).String(),
			"ip":       c.ClientIP(),
		}
		if id, ok := auth.UserID(c); ok {
			fields["user_id"] = id
		}
		entry := log.WithFields(fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("HTTP запрос")
		case status >= 400:
			entry.Warn("HTTP запрос")
		default:
			entry.Debug("HTTP запрос")
		}
	}
}

// routeOf — шаблон маршрута (/api/stories/:id), чтобы не плодить метки по id.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
