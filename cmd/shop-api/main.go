package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/shop-checkout/internal/pkg/cache"
	"github.com/jcmexdev/shop-checkout/internal/pkg/config"
	"github.com/jcmexdev/shop-checkout/internal/pkg/interceptors"
	"github.com/jcmexdev/shop-checkout/internal/pkg/kafka"
	"github.com/jcmexdev/shop-checkout/internal/pkg/metrics"
	"github.com/jcmexdev/shop-checkout/internal/pkg/telemetry"
	"github.com/jcmexdev/shop-checkout/internal/shop/app"
	"github.com/jcmexdev/shop-checkout/internal/shop/events"
	"github.com/jcmexdev/shop-checkout/internal/shop/httpx"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
	"github.com/jcmexdev/shop-checkout/internal/shop/session"
	"github.com/jcmexdev/shop-checkout/internal/storage/postgres"
	"github.com/jcmexdev/shop-checkout/internal/storage/sqlite"
)

type store interface {
	ports.UnitOfWork
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var replay cache.Cache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
		if err := rc.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, idempotent replay may fail", "addr", cfg.RedisAddr, "error", err)
		}
		defer rc.Close()
		replay = rc
	}

	// relayDone is closed once the relay has returned; nil when disabled.
	var relayDone <-chan struct{}
	if cfg.KafkaBrokers != "" {
		pub := kafka.NewPublisher(kafka.ParseBrokers(cfg.KafkaBrokers))
		defer pub.Close()
		relayDone = events.NewRelay(st, pub, cfg.OutboxInterval).Start(ctx)
		slog.Info("outbox relay running", "brokers", cfg.KafkaBrokers, "interval", cfg.OutboxInterval)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)

	handler := httpx.NewHandler(httpx.Services{
		Carts:    app.NewCartService(st),
		Checkout: app.NewCheckoutEngine(st),
		Catalog:  app.NewCatalogService(st),
		Orders:   app.NewOrderService(st),
	}, serverMetrics, replay, cfg.IdempotencyTTL)
	router := httpx.NewRouter(handler, httpx.RouterOptions{
		Sessions: session.NewCookieProvider(cfg.SecureCookies),
		Health:   st,
		Metrics:  metrics.Handler(reg),
	})

	grpcServer, healthSrv, err := startAdmin(cfg.GRPCAddr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}
	defer grpcServer.GracefulStop()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("shop api running", "addr", cfg.HTTPAddr, "driver", cfg.StorageDriver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
	}

	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	// The store and publisher are closed by deferred calls; the relay must
	// be out of Flush first.
	stop()
	if relayDone != nil {
		<-relayDone
	}
	slog.Info("shop api stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	lite, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

// startAdmin serves the gRPC health service on addr.
func startAdmin(addr string) (*grpc.Server, *health.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.RequestIDServerInterceptor()),
	)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		slog.Info("admin gRPC running", "addr", addr)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("admin gRPC stopped", "error", err)
		}
	}()
	return grpcServer, healthSrv, nil
}
