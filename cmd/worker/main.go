package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/carebooking/config"
	"github.com/Domenick1991/carebooking/internal/email"
	"github.com/Domenick1991/carebooking/internal/kafka"
	"github.com/Domenick1991/carebooking/internal/logging"
	"github.com/Domenick1991/carebooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()
	ledger := repository.NewConfirmationRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger.Named("kafka"))
	defer consumer.Close()

	emailSender := email.NewSender(logger.Named("email"))

	go func() {
		if err := consumer.ConsumeAppointmentEvents(ctx, emailSender.Send); err != nil {
			logger.Error("consumer stopped", zap.Error(err))
			stop()
		}
	}()

	purgeEvery := time.Duration(cfg.Worker.PurgeIntervalMinutes) * time.Minute
	if purgeEvery <= 0 {
		purgeEvery = time.Hour
	}
	retention := time.Duration(cfg.Worker.RetentionDays) * 24 * time.Hour
	purgeTicker := time.NewTicker(purgeEvery)
	defer purgeTicker.Stop()

	logger.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))
	for {
		select {
		case <-purgeTicker.C:
			if retention <= 0 {
				continue
			}
			n, err := ledger.PurgeBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				logger.Error("purge confirmations", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged old confirmations", zap.Int64("count", n))
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}
