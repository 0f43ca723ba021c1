// Package server собирает gin-движок со всеми маршрутами и управляет
// жизненным циклом http.Server: запуск и плавная остановка.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/features/auth"
	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/features/karma"
	"serotonyl.ru/newsboard/internal/features/stories"
	"serotonyl.ru/newsboard/internal/features/users"
	"serotonyl.ru/newsboard/internal/features/votes"
	"serotonyl.ru/newsboard/internal/server/middleware"
)

// Handlers — обработчики фич, которые вешаются на маршруты.
type Handlers struct {
	Users    *users.Handler
	Stories  *stories.Handler
	Comments *comments.Handler
	Votes    *votes.Handler
	Karma    *karma.Handler
}

// Server — HTTP-сервер API.
type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	http        *http.Server
	rateLimiter *middleware.RateLimiter
}

// New создаёт движок, middleware и маршруты. Слушать порт начинает Start.
func New(cfg *config.Config, h Handlers, issuer *auth.TokenIssuer) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	if cfg.FeatureMetricsEnabled {
		engine.Use(middleware.Metrics())
	}

	s := &Server{
		cfg:         cfg,
		engine:      engine,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
	}
	s.routes(h, issuer)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}
	return s
}

// Handler — движок целиком. Нужен тестам.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start блокируется, пока сервер не остановят. Штатная остановка — не ошибка.
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP-сервер запущен")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка HTTP-сервера: %w", err)
	}
	return nil
}

// Shutdown дожидается текущих запросов (не дольше ctx) и гасит rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.rateLimiter.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
	}
	log.Info("HTTP-сервер остановлен")
	return nil
}
