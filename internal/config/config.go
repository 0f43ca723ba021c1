// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// перед этим godotenv подхватывает .env (если он есть).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- HTTP ---
	Port             int           `envconfig:"PORT" default:"3000"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	// Список через запятую, "*" — любой Origin
	CORSAllowedOriginsRaw string   `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedOrigins    []string `envconfig:"-"` // заполним вручную

	// --- Database ---
	// DATABASE_URL имеет приоритет над DB_* (так запускается в docker-compose и на хостинге).
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      int    `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"newsboard"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"newsboard"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Auth ---
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"newsboard"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- Community ---
	UserStartingKarma  int `envconfig:"USER_STARTING_KARMA" default:"1"`
	StoryStartingScore int `envconfig:"STORY_STARTING_SCORE" default:"1"`
	PasswordMinLength  int `envconfig:"PASSWORD_MIN_LENGTH" default:"6"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Telegram ---
	// Без токена и канала уведомления просто выключены.
	TelegramBotToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChannelID int64  `envconfig:"TELEGRAM_CHANNEL_ID"`
	PublicBaseURL     string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:5173"`

	// --- Jobs ---
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"*/30 * * * *"`
	DigestSchedule    string `envconfig:"DIGEST_SCHEDULE" default:"0 9 * * *"`
	DigestSize        int    `envconfig:"DIGEST_SIZE" default:"10"`

	// --- Feature Flags ---
	FeatureAnnounceStories bool `envconfig:"FEATURE_ANNOUNCE_STORIES" default:"true"`
	FeatureDigestEnabled   bool `envconfig:"FEATURE_DIGEST_ENABLED" default:"true"`
	FeatureReconcile       bool `envconfig:"FEATURE_RECONCILE_ENABLED" default:"true"`
	FeatureMetricsEnabled  bool `envconfig:"FEATURE_METRICS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// TelegramEnabled — заданы ли токен и канал для уведомлений.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChannelID != 0
}

// IsProduction — упрощённая проверка окружения (влияет на режим gin).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET должен быть не короче 16 символов")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL должен быть > 0")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT вне диапазона: %d", c.Port)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.PasswordMinLength <= 0 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	if c.DigestSize <= 0 {
		return fmt.Errorf("DIGEST_SIZE должен быть > 0")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения, заполняет структуру Config.
func Load() (*Config, error) {
	// .env не обязателен: в docker всё приходит через окружение
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось прочитать .env: %w", err)
	}
	return FromEnv()
}

// FromEnv заполняет Config только из окружения, без .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	cfg.CORSAllowedOrigins = parseCSV(cfg.CORSAllowedOriginsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
