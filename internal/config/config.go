package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/BruksfildServices01/barber-booking/internal/booking"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type Config struct {
	ServerPort string
	AppEnv     string
	LogLevel   string
	JWTSecret  string

	PlatformURL     string
	PlatformTimeout time.Duration
	Timezone        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DraftTTL      time.Duration
	IdleTimeout   time.Duration

	// DBUrl enables the gorm audit trail. Empty means audit events are
	// only logged.
	DBUrl string

	CORSOrigins      []string
	MediaConcurrency int
	AuditQueueSize   int
	Routes           booking.Routes
}

// Load reads the environment, after a .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	defaults := booking.DefaultRoutes()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		PlatformURL: strings.TrimRight(getEnv("PLATFORM_API_URL", "http://localhost:3000"), "/"),
		Timezone:    getEnv("BOOKING_TIMEZONE", timezone.DefaultTimezone),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DBUrl: os.Getenv("DATABASE_URL"),

		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		Routes: booking.Routes{
			BarberProfile: getEnv("ROUTE_BARBER_PROFILE", defaults.BarberProfile),
			Dashboard:     getEnv("ROUTE_DASHBOARD", defaults.Dashboard),
			Landing:       getEnv("ROUTE_LANDING", defaults.Landing),
			Profile:       getEnv("ROUTE_PROFILE", defaults.Profile),
		},
	}

	var err error
	if cfg.PlatformTimeout, err = getDuration("PLATFORM_API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DraftTTL, err = getDuration("DRAFT_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout, err = getDuration("SESSION_IDLE_TIMEOUT", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.MediaConcurrency, err = getInt("MEDIA_FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.AuditQueueSize, err = getInt("AUDIT_QUEUE_SIZE", 100); err != nil {
		return nil, err
	}

	if !timezone.IsValid(cfg.Timezone) {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q", cfg.Timezone)
	}
	if !strings.Contains(cfg.Routes.BarberProfile, "{id}") {
		return nil, fmt.Errorf("ROUTE_BARBER_PROFILE must contain {id}")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

func (c *Config) UseDatabase() bool {
	return c.DBUrl != ""
}
