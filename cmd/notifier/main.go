package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"audti-backend-go/internal/config"
	"audti-backend-go/internal/notify"
	"audti-backend-go/pkg/mailer"
	"audti-backend-go/pkg/messagequeue"
)

func main() {
	release := strings.ToLower(os.Getenv("GIN_MODE")) == "release"
	if !release {
		_ = godotenv.Load()
	}

	// --- 1. Initialize Logger (Zap) ---
	var (
		logger *zap.Logger
		err    error
	)
	if release {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	// --- 2. Load Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to load configuration", zap.Error(err))
	}
	if err := cfg.ValidateNotifier(); err != nil {
		logger.Fatal("CRITICAL_ERROR: Invalid notifier configuration", zap.Error(err))
	}

	// --- 3. Connect to RabbitMQ ---
	queue, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: cfg.RabbitMQURL})
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer queue.Close()

	// --- 4. Configure the SMTP mailer ---
	sender := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailSender,
	})

	// --- 5. Run consumers until a shutdown signal arrives ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notify.NewWorker(queue, cfg.NotificationQueue, sender, logger).Run(gctx)
	})
	g.Go(func() error {
		return notify.NewActivityLogger(queue, cfg.ActivityQueue, logger).Run(gctx)
	})

	logger.Info("Notifier started",
		zap.String("notifications", cfg.NotificationQueue),
		zap.String("activity", cfg.ActivityQueue))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notifier stopped with error", zap.Error(err))
		return
	}
	logger.Info("Notifier exiting gracefully.")
}
