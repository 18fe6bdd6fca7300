package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"studyplan-backend/config"
	"studyplan-backend/database"
	"studyplan-backend/handlers"
	"studyplan-backend/repository"
	"studyplan-backend/services"
	"studyplan-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Env,
			Release:     cfg.AppName,
		})
		if err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info().Msg("initialized sentry")
	}

	var db *gorm.DB
	if cfg.Storage.UserStore == config.StorePostgres || cfg.Storage.PlanStore == config.StorePostgres {
		conn, err := database.ConnectPostgres(cfg, logger, cfg.Storage.PlanStore == config.StorePostgres)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.ClosePostgres(conn); err != nil {
				logger.Error().Err(err).Msg("failed to close postgres")
			}
		}()
		db = conn
	}

	var (
		users      repository.UserRepository
		activities repository.ActivityRepository
		plans      repository.PlanRepository
	)

	switch cfg.Storage.UserStore {
	case config.StorePostgres:
		users = repository.NewGormUserRepository(db)
		activities = repository.NewGormActivityRepository(db)
	case config.StoreMemory:
		users = repository.NewMemoryUserRepository()
		activities = repository.NewMemoryActivityRepository()
	default:
		return fmt.Errorf("unknown USER_STORE: %s", cfg.Storage.UserStore)
	}

	switch cfg.Storage.PlanStore {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.Storage.MongoURI, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed to disconnect mongo")
			}
		}()

		repo := repository.NewMongoPlanRepository(client.Database(cfg.Storage.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		plans = repo
	case config.StorePostgres:
		plans = repository.NewGormPlanRepository(db)
	case config.StoreMemory:
		plans = repository.NewMemoryPlanRepository()
	default:
		return fmt.Errorf("unknown PLAN_STORE: %s", cfg.Storage.PlanStore)
	}

	if rdb := database.ConnectRedis(ctx, cfg.Redis.URL, logger); rdb != nil {
		defer rdb.Close()
		users = repository.NewCachedUserRepository(users, rdb, cfg.Redis.UserCacheTTL, logger)
	}

	notifier := services.NewNotificationService(logger, newMailer(cfg, logger), newPusher(ctx, cfg, logger), cfg.AppName, cfg.AppURL)

	tokens := services.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	accounts := services.NewAccountService(logger, users, tokens)
	activity := services.NewActivityService(logger, activities, plans)
	planService := services.NewPlanService(logger, plans, users, activity, notifier)

	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.New(logger, accounts, planService, activity, cfg.AppName).NewRouter(cfg.HTTP.CORSOrigins)

	return serve(cfg.HTTP, router, logger)
}

func newMailer(cfg *config.Config, logger zerolog.Logger) services.Mailer {
	switch {
	case cfg.Mail.SendGridAPIKey != "":
		logger.Info().Msg("sending e-mail through sendgrid")
		return services.NewSendGridMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.From, cfg.AppName)
	case cfg.Mail.SMTPHost != "":
		logger.Info().Str("host", cfg.Mail.SMTPHost).Msg("sending e-mail through smtp")
		return services.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUsername, cfg.Mail.SMTPPassword, cfg.Mail.From)
	default:
		logger.Warn().Msg("no mail provider configured, e-mails are disabled")
		return nil
	}
}

func newPusher(ctx context.Context, cfg *config.Config, logger zerolog.Logger) services.Pusher {
	if cfg.Firebase.CredentialsFile == "" {
		logger.Warn().Msg("FIREBASE_CREDENTIALS not set, push notifications are disabled")
		return nil
	}
	pusher, err := services.NewFirebasePusher(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to init firebase, push notifications are disabled")
		return nil
	}
	logger.Info().Msg("initialized firebase messaging")
	return pusher
}

func serve(cfg config.HTTPConfig, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info().
			Str("host", cfg.Host).
			Str("port", cfg.Port).
			Msg("setting up http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return fmt.Errorf("listen and serve: %w", err)
	case <-quit:
	}

	logger.Info().Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info().Msg("shut down http server")
	return nil
}
