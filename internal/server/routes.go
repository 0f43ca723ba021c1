// Package server — routes.go: таблица маршрутов API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serotonyl.ru/newsboard/internal/features/auth"
	"serotonyl.ru/newsboard/internal/server/middleware"
)

func (s *Server) routes(h Handlers, issuer *auth.TokenIssuer) {
	s.engine.GET("/health", health)
	if s.cfg.FeatureMetricsEnabled {
		s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	limit := middleware.RateLimit(s.rateLimiter)
	api := s.engine.Group("/api")

	// Публичные маршруты ограничиваются по IP
	public := api.Group("", limit)
	public.POST("/auth/register", h.Users.Register)
	public.POST("/auth/login", h.Users.Login)
	public.GET("/users/:userId", h.Users.Profile)
	public.GET("/stories", h.Stories.List)
	public.GET("/stories/:id", h.Stories.Get)
	public.GET("/leaders", h.Karma.Leaders)

	// Закрытые: сначала токен, потом лимит по id пользователя
	private := api.Group("", auth.Authenticate(issuer), limit)
	private.GET("/auth/me", h.Users.Me)
	private.POST("/stories", h.Stories.Create)
	private.POST("/comments", h.Comments.Create)
	private.POST("/votes", h.Votes.Vote)
	private.GET("/votes", h.Votes.List)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
