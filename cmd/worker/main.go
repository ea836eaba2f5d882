package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-shipment-api/internal/app/api"
	shipmentactivities "github.com/Apurer/go-gin-shipment-api/internal/durable/temporal/activities/shipments"
	shipmentworkflows "github.com/Apurer/go-gin-shipment-api/internal/durable/temporal/workflows/shipments"
	platformobservability "github.com/Apurer/go-gin-shipment-api/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "shipment-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.WithLogFile(cfg.LogFile))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := api.BuildServices(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	shipmentActivities := shipmentactivities.NewActivities(services.Shipments)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, shipmentworkflows.ShipmentCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(shipmentworkflows.ShipmentCreationWorkflow, workflow.RegisterOptions{Name: shipmentworkflows.ShipmentCreationWorkflowName})
	w.RegisterActivityWithOptions(shipmentActivities.PersistShipment, activity.RegisterOptions{Name: shipmentactivities.PersistShipmentActivityName})
	w.RegisterActivityWithOptions(shipmentActivities.AnchorShipment, activity.RegisterOptions{Name: shipmentactivities.AnchorShipmentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", shipmentworkflows.ShipmentCreationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
