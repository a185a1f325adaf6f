package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/feedback-hub/internal/auth"
	"github.com/hongminglow/feedback-hub/internal/config"
	"github.com/hongminglow/feedback-hub/internal/feedback"
	"github.com/hongminglow/feedback-hub/internal/http/handlers"
	"github.com/hongminglow/feedback-hub/internal/logging"
	"github.com/hongminglow/feedback-hub/internal/notify"
	"github.com/hongminglow/feedback-hub/internal/observability"
	"github.com/hongminglow/feedback-hub/internal/server"
	"github.com/hongminglow/feedback-hub/internal/storage"
	"github.com/hongminglow/feedback-hub/internal/storage/postgres"
	"github.com/hongminglow/feedback-hub/internal/storage/sqlite"
)

const shutdownTimeout = 15 * time.Second

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authSvc, err := auth.NewService(store, tokens, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	checks := map[string]handlers.HealthCheck{"database": store.Ping}
	notifier, closeNotifier, err := buildNotifier(cfg, logger, checks)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}
	defer closeNotifier()

	metrics := observability.NewMetrics()
	feedbackSvc := feedback.NewService(store, notifier, logger, feedback.WithNotificationObserver(metrics))

	srv, err := server.New(server.Deps{
		Config:       cfg,
		Logger:       logger,
		Auth:         authSvc,
		Feedback:     feedbackSvc,
		Tokens:       tokens,
		Metrics:      metrics,
		HealthChecks: checks,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("FeedbackHub listening",
			slog.String("addr", srv.Addr()),
			slog.String("storage", cfg.StorageDriver),
			slog.String("notifier", cfg.Notifier))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown error", slog.Any("error", err))
		}
		if err := feedbackSvc.WaitContext(shutdownCtx); err != nil {
			logger.Warn("abandoned in-flight notifications", slog.Any("error", err))
		}
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverSQLite {
		store, err := sqlite.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// buildNotifier selects the thank-you delivery mode and registers any
// dependency it adds to the health checks.
func buildNotifier(cfg config.Config, logger *slog.Logger, checks map[string]handlers.HealthCheck) (notify.Notifier, func(), error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		sender := notify.NewSMTPSender(smtpConfig(cfg))
		return notify.NewMailNotifier(sender), func() {}, nil
	case config.NotifierQueue:
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		closeAll := func() {
			if err := client.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
		return notify.NewQueueNotifier(client), closeAll, nil
	case config.NotifierLog:
		return notify.NewLogNotifier(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported notifier %q", cfg.Notifier)
	}
}

func smtpConfig(cfg config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.EmailFrom,
		Timeout:  cfg.SMTPTimeout,
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Default().Info("no .env file found; relying on existing environment")
	}
}
