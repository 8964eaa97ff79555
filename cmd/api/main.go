package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/config"
	"github.com/imrishuroy/go-storefront/internal/coupon"
	"github.com/imrishuroy/go-storefront/internal/external"
	"github.com/imrishuroy/go-storefront/internal/handlers"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
	"github.com/imrishuroy/go-storefront/internal/logging"
	"github.com/imrishuroy/go-storefront/internal/notify"
	"github.com/imrishuroy/go-storefront/internal/orders"
)

func setupRouter(cfg handlers.HandlerConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

// newRecorder wires DynamoDB, SQS and CloudWatch for order recording.
func newRecorder(ctx context.Context, cfg config.Config, logger *zap.Logger) (*orders.Recorder, error) {
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		return nil, err
	}
	return orders.NewRecorder(
		orders.NewStore(clients.DynamoDB, cfg.OrdersTable),
		idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.TTLWindow),
		clients.Publisher(cfg.QueueURL),
		aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace),
		logger,
	), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	products := catalog.Default()
	cartStore := cart.NewStore(products)
	coupons := coupon.Default()
	notifier := notify.NewChannel()
	defer notifier.Close()

	hcfg := handlers.HandlerConfig{
		Catalog:        products,
		Cart:           cartStore,
		Coupons:        coupons,
		Checkout:       checkout.NewOrchestrator(cartStore, coupons, checkout.WithLogger(logger)),
		Notifier:       notifier,
		Fetcher:        external.NewFetcher(nil, cfg.ExternalURL, cfg.ExternalTimeout),
		Logger:         logger,
		CatalogLatency: cfg.CatalogLatency,
		SearchLatency:  cfg.SearchLatency,
	}

	if cfg.RecordingEnabled() {
		rec, err := newRecorder(context.Background(), cfg, logger)
		if err != nil {
			logger.Fatal("failed to init aws clients", zap.Error(err))
		}
		hcfg.Recorder = rec
		logger.Info("order recording enabled",
			zap.String("orders_table", cfg.OrdersTable),
			zap.String("idempotency_table", cfg.IdempotencyTable),
			zap.Bool("queue", cfg.QueueURL != ""))
	}

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	r := setupRouter(hcfg, logger)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.RunLocal {
		serveLocal(r, cfg.HTTPAddr, logger)
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

// serveLocal runs r until SIGINT or SIGTERM. Open event streams are
// cancelled through the base context so Shutdown does not wait on them.
func serveLocal(r *gin.Engine, addr string, logger *zap.Logger) {
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		logger.Info("running local server", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancelStreams()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}
