package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/carebooking/config"
	"github.com/Domenick1991/carebooking/internal/bootstrap"
	"github.com/Domenick1991/carebooking/internal/cache"
	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"github.com/Domenick1991/carebooking/internal/kafka"
	"github.com/Domenick1991/carebooking/internal/logging"
	"github.com/Domenick1991/carebooking/internal/metrics"
	"github.com/Domenick1991/carebooking/internal/repository"
	"github.com/Domenick1991/carebooking/internal/service/booking"
	"github.com/Domenick1991/carebooking/internal/service/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Fatal("load booking timezone", zap.String("timezone", cfg.Booking.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	ledger := repository.NewConfirmationRepository(pool)
	if err := ledger.EnsureSchema(ctx); err != nil {
		logger.Warn("confirmation ledger schema not ensured", zap.Error(err))
	}

	catalogTTL := time.Duration(cfg.Booking.CatalogCacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, catalogTTL)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, cache and submit lock will fail open", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger.Named("kafka"))
	defer producer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(reg)

	client := hospitalapi.NewClient(cfg.HospitalAPI.BaseURL, cfg.HospitalAPI.ServiceToken,
		hospitalapi.WithTimeout(cfg.HospitalAPI.Timeout()),
		hospitalapi.WithObserver(bookingMetrics),
		hospitalapi.WithLogger(logger.Named("hospitalapi")),
	)

	catalogService := catalog.NewCatalogService(client, redisCache, logger.Named("catalog"))
	bookingService := booking.NewBookingService(
		catalogService,
		client,
		booking.WithLedger(ledger),
		booking.WithSubmitLock(redisCache, time.Duration(cfg.Booking.SubmitLockSeconds)*time.Second),
		booking.WithProducer(producer, cfg.Kafka.AppointmentsTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(bookingMetrics),
		booking.WithLogger(logger.Named("booking")),
		booking.WithSessionTTL(time.Duration(cfg.Booking.SessionTTLMinutes)*time.Minute),
		booking.WithFee(cfg.Booking.ConsultationFeeCents, cfg.Booking.Currency),
		booking.WithLocation(loc),
	)

	go sweepSessions(ctx, bookingService, time.Minute)

	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Catalog:  catalogService,
		Bookings: bookingService,
		Gatherer: reg,
		Logger:   logger,
	}); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func sweepSessions(ctx context.Context, svc booking.BookingUseCase, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			svc.SweepExpired(ctx)
		case <-ctx.Done():
			return
		}
	}
}
