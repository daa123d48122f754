package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"golang.org/x/sync/errgroup"

	ordersobs "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	orderactivities "github.com/Apurer/go-gin-storefront/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-storefront/internal/durable/temporal/workflows/orders"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore/dialer"
	platformobservability "github.com/Apurer/go-gin-storefront/internal/platform/observability"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
)

const workerServiceName = "order-worker"

// RunWorker processes order creation workflows until ctx is cancelled. The worker shares
// the order service's configuration and only persists once its document store is connected.
func RunWorker(ctx context.Context) error {
	cfg, err := LoadConfig(KindOrders)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, workerServiceName)
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

	temporalClient, err := connectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	publisher, closePublisher := buildPublisher(ctx, cfg, logger)
	defer closePublisher()

	sw := docstore.NewSwitch(nil)
	logger.Info("document store configured", slog.String("uri", dialer.Redact(cfg.DatabaseURI)))
	supervisor := docstore.NewSupervisor(sw, dialer.New(cfg.DatabaseURI, ordersapp.Collection),
		docstore.WithRetryInterval(cfg.ReconnectInterval),
		docstore.WithProbeInterval(cfg.LivenessProbeInterval),
		docstore.WithSupervisorLogger(logger),
		docstore.WithSupervisorMeter(instruments.Meter("internal.platform.docstore")),
	)
	service := ordersobs.New(
		ordersapp.NewService(
			ordersapp.NewOrders(sw, entity.WithLogger(logger)),
			ordersapp.WithPublisher(publisher),
			ordersapp.WithLogger(logger),
		),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.domains.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.domains.orders.application")),
	)
	activities := orderactivities.NewActivities(service, func() bool { return sw.Mode() == docstore.Connected })

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return supervisor.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("worker listening",
			slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue),
			slog.String("namespace", cfg.TemporalNamespace))
		interrupt := make(chan interface{})
		go func() {
			<-gctx.Done()
			close(interrupt)
		}()
		if err := w.Run(interrupt); err != nil {
			logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
			return err
		}
		logger.Info("Temporal worker stopped")
		return nil
	})
	err = g.Wait()
	return errors.Join(err, supervisor.Close())
}
