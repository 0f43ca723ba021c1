package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
)

var fastParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-0123456789",
		JWTTTL:    time.Hour,
		JWTIssuer: "newsboard",
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPasswordWithParams("correct horse", fastParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, VerifyPassword("correct horse", hash))
	assert.False(t, VerifyPassword("battery staple", hash))

	again, err := HashPasswordWithParams("correct horse", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "соль должна быть случайной")

	assert.False(t, VerifyPassword("x", "plain-text"))
	assert.False(t, VerifyPassword("x", "$argon2id$v=19$m=1,t=1,p=1$!!!$!!!"))
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testConfig())
	id := Identity{ID: uuid.New(), Email: "pg@example.com", Username: "pg"}

	raw, err := issuer.Issue(id)
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, id.ID.String(), claims.ID)
	assert.Equal(t, "pg@example.com", claims.Email)
	assert.Equal(t, "pg", claims.Username)
	assert.Equal(t, "newsboard", claims.Issuer)
	assert.Equal(t, claims.IssuedAt+3600, claims.ExpiresAt)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer(testConfig())
	id := Identity{ID: uuid.New(), Username: "pg"}

	t.Run("expired", func(t *testing.T) {
		old := NewTokenIssuer(testConfig())
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := old.Issue(id)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTSecret = "another-secret-987654"
		raw, err := NewTokenIssuer(cfg).Issue(id)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTIssuer = "someone-else"
		raw, err := NewTokenIssuer(cfg).Issue(id)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := Claims{ID: id.ID.String(), StandardClaims: jwt.StandardClaims{
			Issuer:    "newsboard",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("id not uuid", func(t *testing.T) {
		claims := Claims{ID: "42", StandardClaims: jwt.StandardClaims{
			Issuer:    "newsboard",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testConfig().JWTSecret))
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := NewTokenIssuer(testConfig())
	id := Identity{ID: uuid.New(), Email: "pg@example.com", Username: "pg"}
	token, err := issuer.Issue(id)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", Authenticate(issuer), func(c *gin.Context) {
		uid, ok := UserID(c)
		require.True(t, ok)
		claims, ok := CurrentClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": uid, "username": claims.Username})
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, `{"error":"Unauthorized: Missing token"}`},
		{"basic scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Unauthorized: Missing token"}`},
		{"bad token", "Bearer nope", http.StatusForbidden, `{"error":"Forbidden: Invalid or expired token"}`},
		{"ok", "Bearer " + token, http.StatusOK, `{"id":"` + id.ID.String() + `","username":"pg"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
