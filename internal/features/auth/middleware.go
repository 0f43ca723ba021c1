// Package auth — middleware.go: проверка Bearer-токена для закрытых маршрутов.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/common"
)

// Ключи gin-контекста.
const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// Authenticate требует заголовок Authorization: Bearer <token>.
// Без токена отвечаем 401, на невалидный или истёкший токен 403.
func Authenticate(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			common.JSONError(c, http.StatusUnauthorized, "Unauthorized: Missing token")
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			log.WithError(err).WithField("ip", c.ClientIP()).Debug("Отклонён токен")
			common.JSONError(c, http.StatusForbidden, "Forbidden: Invalid or expired token")
			return
		}

		// Parse уже проверил, что id — UUID
		c.Set(ctxUserID, uuid.MustParse(claims.ID))
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// UserID — id аутентифицированного пользователя из контекста.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CurrentClaims — claims токена текущего запроса.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// SetUserID кладёт id в контекст. Нужен тестам обработчиков без настоящего токена.
func SetUserID(c *gin.Context, id uuid.UUID) {
	c.Set(ctxUserID, id)
}
