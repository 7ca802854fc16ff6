package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/cache"
	eventadapter "github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/events"
	httpadapter "github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/postgres"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/waha"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping m28 order webhook service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"admin_count", len(cfg.AdminPhones),
	)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var publisher ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = eventadapter.NewKafkaPublisher(cfg.KafkaBrokers)
	} else {
		logger.Warn("no kafka brokers configured, events go to the log")
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	repos := postgres.NewRepositories(pool)
	gateway := waha.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewaySession, cfg.GatewayTimeout)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceID,
			ShippingCost:      cfg.ShippingCost(),
			AdminPhones:       cfg.AdminPhones,
			AdminSendInterval: cfg.AdminSendInterval,
			EventTTL:          cfg.EventTTL,
			ProductLockTTL:    cfg.ProductLockTTL,
		},
		Orders:    repos.Orders,
		Products:  repos.Products,
		Gateway:   gateway,
		Publisher: publisher,
		Processed: cacheadapter.NewRedisProcessedEventStore(redisClient),
		Locks:     cacheadapter.NewRedisProductLockStore(redisClient),
	})

	verifier := security.NewWebhookVerifier(cfg.WebhookSecret, cfg.SignatureTolerance)
	handler := httpadapter.NewHandler(svc, verifier)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		cleanupFn: func(ctx context.Context) {
			if closer, ok := publisher.(interface{ Close() error }); ok {
				_ = closer.Close()
			}
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker consumes order status-change events and sends customer notices.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(r.cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("worker requires kafka brokers")
	}
	consumer, err := eventadapter.NewKafkaConsumer(r.cfg.KafkaBrokers, r.cfg.KafkaGroupID, []string{eventadapter.StatusChangedTopic})
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer consumer.Close()

	worker := eventadapter.NewStatusWorker(r.logger, consumer, r.service, r.cfg.WorkerPollInterval)
	r.logger.Info("status worker started", "topic", eventadapter.StatusChangedTopic)
	err = worker.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
