package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/cartstore"
	"github.com/Ashish5180/vibe-bites/config"
	orderControllers "github.com/Ashish5180/vibe-bites/controllers/order"
	"github.com/Ashish5180/vibe-bites/jobs"
	"github.com/Ashish5180/vibe-bites/logging"
	"github.com/Ashish5180/vibe-bites/middleware"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/notify"
	"github.com/Ashish5180/vibe-bites/payments"
	"github.com/Ashish5180/vibe-bites/routes"
	"github.com/Ashish5180/vibe-bites/telemetry"
	"github.com/Ashish5180/vibe-bites/validation"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.Register(); err != nil {
		return err
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, telemetry.Config{
		ServiceName:  "vibe-bites-api",
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     !cfg.IsProduction(),
	}, logger)
	if err != nil {
		return err
	}

	notifier := notify.NewNotifier(newSender(cfg, logger), logger)
	hub := orderControllers.NewHub(logger, cfg.CORSOrigin)

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, payment calls will fail")
	}

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Add(cfg.CouponSweepSchedule, "coupon-expiry", jobs.CouponSweep(db, tel.Metrics, logger)); err != nil {
		return err
	}
	scheduler.Start()

	router := routes.NewRouter(&routes.Deps{
		DB:          db,
		Log:         logger,
		Tokens:      auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Notifier:    notifier,
		Hub:         hub,
		Payments:    payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, nil),
		Carts:       newCartStore(ctx, cfg, db, logger),
		Metrics:     tel.Metrics,
		AuthLimiter: limiter,
		CORSOrigin:  cfg.CORSOrigin,
		ClientURL:   cfg.ClientURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	notifier.Wait()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

// initDatabase opens postgres with driver errors translated to gorm's
// sentinel errors (ErrDuplicatedKey and friends).
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func newSender(cfg *config.Config, logger *zap.Logger) notify.Sender {
	if !cfg.Email.Enabled() {
		logger.Warn("EMAIL_HOST not set, emails will only be logged")
		return notify.LogSender{Log: logger}
	}
	sender, err := notify.NewSMTPSender(cfg.Email)
	if err != nil {
		logger.Error("smtp setup failed, emails will only be logged", zap.Error(err))
		return notify.LogSender{Log: logger}
	}
	return sender
}

// newCartStore prefers redis and falls back to postgres when redis is not
// configured or not reachable at startup.
func newCartStore(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) cartstore.Store {
	if cfg.RedisAddr == "" {
		return cartstore.NewGormStore(db)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, cart mirror uses postgres", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return cartstore.NewGormStore(db)
	}
	return cartstore.NewRedisStore(client)
}
