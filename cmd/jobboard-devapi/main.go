// Command jobboard-devapi is the development backend the client talks to:
// auth with OTP verification, notifications and the push channel.
//
//	@title						Job Board Development API
//	@version					1.0
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/jobhub/jobboard/docs"
	"github.com/jobhub/jobboard/internal/api"
	"github.com/jobhub/jobboard/internal/api/middleware"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/core/service"
	"github.com/jobhub/jobboard/internal/infrastructure/config"
	"github.com/jobhub/jobboard/internal/infrastructure/db/memory"
	mongodb "github.com/jobhub/jobboard/internal/infrastructure/db/mongo"
	redisdb "github.com/jobhub/jobboard/internal/infrastructure/db/redis"
	"github.com/jobhub/jobboard/internal/infrastructure/http/handlers"
	"github.com/jobhub/jobboard/internal/infrastructure/push"
	"github.com/jobhub/jobboard/internal/infrastructure/queue"
	"github.com/jobhub/jobboard/pkg/logger"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load(boot)

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "jobboard-devapi"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		accounts interface {
			ports.AccountRepository
			middleware.AccountLookup
		}
		notificationRepo ports.NotificationRepository
		otp              ports.OTPStore
		pingers          = map[string]handlers.Pinger{}
	)

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		accounts = memory.NewAccountRepository()
		notificationRepo = memory.NewNotificationRepository()
		otp = memory.NewOTPStore(cfg.OTPTTL)

	default:
		log.Info().Str("uri", cfg.Mongo.URI).Msg("connecting to MongoDB")
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to create indexes")
		}

		log.Info().Str("addr", cfg.Redis.Addr).Msg("connecting to Redis")
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()

		accounts = mongodb.NewAccountRepository(db)
		notificationRepo = mongodb.NewNotificationRepository(db)
		otp = redisdb.NewOTPStore(rdb, cfg.OTPTTL)
		pingers["mongodb"] = mongodb.Pinger{Client: client}
		pingers["redis"] = redisdb.Pinger{Client: rdb}
	}

	accountSvc := service.NewAccountService(accounts, otp, cfg.JWTSecret, cfg.TokenTTL, logger.Component("accounts"))
	if err := accountSvc.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin")
	}

	hub := push.NewHub(logger.Component("push"))
	dispatcher := queue.NewDispatcher(cfg.DeliveryWorkers, hub, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	notificationSvc := service.NewNotificationService(notificationRepo, dispatcher, logger.Component("notifications"))

	deps := api.Dependencies{
		Accounts:      accountSvc,
		Notifications: notificationSvc,
		Hub:           hub,
		JWTSecret:     cfg.JWTSecret,
		Pingers:       pingers,
		AuthRateLimit: cfg.AuthRateLimit,
		AuthBurst:     cfg.AuthBurst,
		Log:           logger.Component("http"),
	}
	if cfg.IsDevelopment() {
		deps.AdminLookup = accounts
	}
	e := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.Store).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
