package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/carebooking/api"
	"github.com/Domenick1991/carebooking/config"
	"github.com/Domenick1991/carebooking/internal/service/booking"
	"github.com/Domenick1991/carebooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
}

// Deps is what the servers expose.
type Deps struct {
	Catalog  catalog.CatalogUseCase
	Bookings booking.BookingUseCase
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := newServers(cfg, deps)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	deps.Logger.Info("servers started",
		zap.String("http", cfg.HTTP.Address),
		zap.String("grpc", cfg.GRPC.Address),
	)

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, deps Deps) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcSrv)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: httpSrv,
	}
}

// NewRouter assembles the HTTP API.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.Recovery(deps.Logger), api.RequestLogger(deps.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	api.RegisterDocs(router)

	v1 := router.Group("/api/v1",
		api.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateBurst, deps.Logger),
		api.ForwardBearer(),
	)
	api.NewCatalogHandler(deps.Catalog).Register(v1)
	api.NewSessionHandler(deps.Bookings).Register(v1)

	return router
}
