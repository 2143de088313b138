package config

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	pkgconfig "github.com/Skotchmaster/vayez/pkg/config"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const (
	ResetStoreDB    = "db"
	ResetStoreRedis = "redis"
)

type Config struct {
	pkgconfig.Config

	AccessTTL     time.Duration
	ActivationTTL time.Duration
	SessionTTL    time.Duration
	ResetTTL      time.Duration

	BcryptCost int
	Roles      []string

	AppURL    string
	MailTopic string

	CookieSecure bool
	CSRFEnabled  bool

	ResetStore    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	base := pkgconfig.Load()
	if base.ServiceName == "" {
		base.ServiceName = "auth"
	}

	cfg := Config{
		Config: base,

		AccessTTL:     pkgconfig.EnvDurationDefault("ACCESS_TTL", 24*time.Hour),
		ActivationTTL: pkgconfig.EnvDurationDefault("ACTIVATION_TTL", 24*time.Hour),
		SessionTTL:    pkgconfig.EnvDurationDefault("SESSION_TTL", 72*time.Hour),
		ResetTTL:      pkgconfig.EnvDurationDefault("RESET_TTL", time.Hour),

		BcryptCost: pkgconfig.EnvIntDefault("BCRYPT_COST", 10),
		Roles:      pkgconfig.CSV(pkgconfig.EnvDefault("ROLES", "admin,user")),

		AppURL:    pkgconfig.EnvDefault("APP_URL", "http://localhost:3000"),
		MailTopic: pkgconfig.EnvDefault("MAIL_TOPIC", "mail_events"),

		CookieSecure: pkgconfig.EnvBoolDefault("COOKIE_SECURE", true),
		CSRFEnabled:  pkgconfig.EnvBoolDefault("CSRF_ENABLED", false),

		ResetStore:    strings.ToLower(pkgconfig.EnvDefault("RESET_STORE", ResetStoreDB)),
		RedisAddr:     pkgconfig.EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: pkgconfig.EnvDefault("REDIS_PASSWORD", ""),
		RedisDB:       pkgconfig.EnvIntDefault("REDIS_DB", 0),
	}

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}

func (c Config) Validate() error {
	switch c.ResetStore {
	case ResetStoreDB, ResetStoreRedis:
	default:
		return fmt.Errorf("RESET_STORE must be %q or %q, got %q", ResetStoreDB, ResetStoreRedis, c.ResetStore)
	}
	if len(c.Roles) == 0 {
		return fmt.Errorf("ROLES must list at least one role")
	}
	return nil
}

// NewRedisClient connects to the configured redis and pings it.
func NewRedisClient(ctx context.Context, c Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", c.RedisAddr, err)
	}
	return client, nil
}
