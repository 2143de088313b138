package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/vayez/internal/config"
	"github.com/Skotchmaster/vayez/internal/httpserver"
	authmw "github.com/Skotchmaster/vayez/internal/middleware/auth"
	"github.com/Skotchmaster/vayez/internal/middleware/csrf"
	"github.com/Skotchmaster/vayez/internal/notify"
	"github.com/Skotchmaster/vayez/internal/repo"
	"github.com/Skotchmaster/vayez/internal/service"
	pkgdb "github.com/Skotchmaster/vayez/pkg/db"
	"github.com/Skotchmaster/vayez/pkg/logging"
	loggingmw "github.com/Skotchmaster/vayez/pkg/middleware/logging"
	"github.com/Skotchmaster/vayez/pkg/tokens"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}
	if err := gormRepo.Migrate(initCtx); err != nil {
		cancel()
		log.Fatalf("db migrate error: %v", err)
	}
	if err := gormRepo.EnsureRoles(initCtx, cfg.Roles); err != nil {
		cancel()
		log.Fatalf("seed roles error: %v", err)
	}

	var (
		resets      service.ResetStore = gormRepo
		redisClient *redis.Client
	)
	if cfg.ResetStore == config.ResetStoreRedis {
		redisClient, err = config.NewRedisClient(initCtx, cfg)
		if err != nil {
			cancel()
			log.Fatalf("redis init error: %v", err)
		}
		resets = &repo.RedisResetStore{Client: redisClient}
	}
	cancel()

	links := notify.Links{BaseURL: cfg.AppURL}
	var (
		notifier notify.Notifier = notify.LogNotifier{Links: links}
		kafka    *notify.KafkaNotifier
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err = notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.MailTopic, links)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		notifier = kafka
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty, mail is only logged")
	}

	issuer := &tokens.Issuer{
		Secret:        cfg.JWTSecret,
		AccessTTL:     cfg.AccessTTL,
		ActivationTTL: cfg.ActivationTTL,
	}

	svc := &service.AuthService{
		Repo:       gormRepo,
		Resets:     resets,
		Tokens:     issuer,
		Notifier:   notifier,
		BcryptCost: cfg.BcryptCost,
		SessionTTL: cfg.SessionTTL,
		ResetTTL:   cfg.ResetTTL,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc, CookieSecure: cfg.CookieSecure},
		Guard:       authmw.NewGuard(issuer),
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		deps.CSRF = &csrfCfg
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	svc.WaitNotifications()
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
