package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	storefrontserver "github.com/Apurer/go-gin-storefront/go"

	catalogobs "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	ordersobs "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability"
	orderworkflows "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore/dialer"
	"github.com/Apurer/go-gin-storefront/internal/platform/messaging/rabbitmq"
	platformobservability "github.com/Apurer/go-gin-storefront/internal/platform/observability"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
	"github.com/Apurer/go-gin-storefront/internal/shared/events"
)

// Run boots one storefront HTTP service with its document store supervisor, event
// publisher and observability wired. The order service also connects to Temporal. It blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, kind Kind) error {
	cfg, err := LoadConfig(kind)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	serviceName := kind.ServiceName()

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	publisher, closePublisher := buildPublisher(ctx, cfg, logger)
	defer closePublisher()

	sw := docstore.NewSwitch(nil)
	handlers := storefrontserver.ApiHandleFunctions{HealthAPI: storefrontserver.NewHealthAPI(serviceName)}
	supervisorOpts := []docstore.SupervisorOption{
		docstore.WithRetryInterval(cfg.ReconnectInterval),
		docstore.WithProbeInterval(cfg.LivenessProbeInterval),
		docstore.WithSupervisorLogger(logger),
		docstore.WithSupervisorMeter(instruments.Meter("internal.platform.docstore")),
	}
	entityOpts := []entity.Option{entity.WithLogger(logger)}

	var collection string
	switch kind {
	case KindProducts:
		collection = catalogapp.Collection
		seed, err := catalogapp.Seeds()
		if err != nil {
			return fmt.Errorf("failed to build product seeds: %w", err)
		}
		supervisorOpts = append(supervisorOpts, docstore.WithFallbackSeed(seed), docstore.WithRemoteSeed(seed))

		core := catalogapp.NewService(
			catalogapp.NewProducts(sw, entityOpts...),
			catalogapp.WithPublisher(publisher),
			catalogapp.WithLogger(logger),
		)
		service := catalogobs.New(
			core,
			catalogobs.WithLogger(logger),
			catalogobs.WithTracer(instruments.Tracer("internal.domains.catalog.application")),
			catalogobs.WithMeter(instruments.Meter("internal.domains.catalog.application")),
		)
		handlers.ProductAPI = storefrontserver.NewProductAPI(service, logger)
	case KindOrders:
		collection = ordersapp.Collection
		seed, err := ordersapp.Seeds()
		if err != nil {
			return fmt.Errorf("failed to build order seeds: %w", err)
		}
		supervisorOpts = append(supervisorOpts, docstore.WithFallbackSeed(seed))

		core := ordersapp.NewService(
			ordersapp.NewOrders(sw, entityOpts...),
			ordersapp.WithPublisher(publisher),
			ordersapp.WithLogger(logger),
		)
		service := ordersobs.New(
			core,
			ordersobs.WithLogger(logger),
			ordersobs.WithTracer(instruments.Tracer("internal.domains.orders.application")),
			ordersobs.WithMeter(instruments.Meter("internal.domains.orders.application")),
		)
		inline := orderworkflows.NewInlineOrderWorkflows(service)
		var workflows orderports.WorkflowOrchestrator = inline
		if temporalClient, err := connectTemporalClient(cfg, instruments, "temporal-client"); err != nil {
			logger.Warn("Temporal workflows unavailable, running inline order creation", slog.String("error", err.Error()))
		} else {
			defer temporalClient.Close()
			workflows = orderworkflows.NewTemporalOrderWorkflows(temporalClient,
				orderworkflows.WithInlineFallback(inline, func() bool { return sw.Mode() == docstore.Connected }))
			logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
		}
		handlers.OrderAPI = storefrontserver.NewOrderAPI(service, workflows, logger)
	}

	logger.Info("document store configured",
		slog.String("uri", dialer.Redact(cfg.DatabaseURI)),
		slog.String("collection", collection))
	supervisor := docstore.NewSupervisor(sw, dialer.New(cfg.DatabaseURI, collection), supervisorOpts...)

	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := storefrontserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return supervisor.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("storefront service listening",
			slog.String("addr", server.Addr),
			slog.String("collection", collection))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("storefront service exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		return errors.Join(err, supervisor.Close())
	})
	return g.Wait()
}

func buildPublisher(ctx context.Context, cfg Config, logger *slog.Logger) (events.Publisher, func()) {
	if cfg.EventsDisabled || cfg.AMQPURL == "" {
		logger.Info("domain events disabled, AMQP_URL not set or EVENTS_DISABLED on")
		return events.Noop, func() {}
	}
	publisher, err := rabbitmq.Connect(ctx, cfg.AMQPURL, logger)
	if err != nil {
		logger.Warn("failed to connect to rabbitmq, domain events will be dropped", slog.String("error", err.Error()))
		return events.Noop, func() {}
	}
	logger.Info("domain events published to rabbitmq", slog.String("exchange", rabbitmq.ExchangeName))
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close rabbitmq publisher", slog.String("error", err.Error()))
		}
	}
}
