// Package auth выпускает и проверяет JWT, хеширует пароли
// и содержит gin-middleware аутентификации.
// tokens.go: HS256-токены с claims {id, email, username}.
package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
)

// Claims — полезная нагрузка токена.
type Claims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// Identity — кого выпускаем токен.
type Identity struct {
	ID       uuid.UUID
	Email    string
	Username string
}

// TokenIssuer подписывает и проверяет токены одним секретом.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer создаёт выпускающего токены по настройкам JWT_*.
func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.JWTTTL,
		issuer: cfg.JWTIssuer,
		now:    time.Now,
	}
}

// Issue выпускает токен на JWT_TTL.
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()
	claims := Claims{
		ID:       id.ID.String(),
		Email:    id.Email,
		Username: id.Username,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
			Issuer:    t.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись, срок и издателя. Любая проблема — ErrInvalidToken.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (interface{}, error) {
		// Принимаем только HMAC, иначе можно подсунуть "none" или RSA
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный алгоритм подписи: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if t.issuer != "" && !claims.VerifyIssuer(t.issuer, true) {
		return nil, common.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil, common.ErrInvalidToken
	}
	return &claims, nil
}
