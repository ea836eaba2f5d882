package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	shipmentserver "github.com/Apurer/go-gin-shipment-api/go"
	shipmentsworkflows "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/workflows"
	shipmentports "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	platformobservability "github.com/Apurer/go-gin-shipment-api/internal/platform/observability"
)

// ServiceName identifies the API process in traces and logs.
const ServiceName = "shipment-api"

// Run boots the shipment HTTP API with observability, repositories, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, ServiceName, platformobservability.WithLogFile(cfg.LogFile))
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

	services, cleanup, err := BuildServices(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var workflows shipmentports.WorkflowOrchestrator = shipmentsworkflows.NewInlineShipmentWorkflows(services.Shipments)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline CreateShipment", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		workflows = shipmentsworkflows.NewTemporalShipmentWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	auth, err := shipmentserver.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		return err
	}
	handlers := shipmentserver.ApiHandleFunctions{
		HealthAPI:   shipmentserver.NewHealthAPI(),
		ShipmentAPI: shipmentserver.NewShipmentAPI(services.Shipments, workflows, cfg.ProofMaxBytes),
		UserAPI:     shipmentserver.NewUserAPI(services.Users),
		Auth:        auth,
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(ServiceName))
	router = shipmentserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("shipment API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("shipment API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shipment API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

// ConnectTemporalClient dials Temporal with tracing and structured logging, unless disabled.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
