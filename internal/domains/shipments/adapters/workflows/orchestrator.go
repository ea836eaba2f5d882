package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	shipmentworkflows "github.com/Apurer/go-gin-shipment-api/internal/durable/temporal/workflows/shipments"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalShipmentWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineShipmentWorkflows)(nil)
)

// TemporalShipmentWorkflows starts shipment workflows on a Temporal cluster.
type TemporalShipmentWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalShipmentWorkflows wires a Temporal client into the orchestrator.
func NewTemporalShipmentWorkflows(c client.Client) *TemporalShipmentWorkflows {
	return &TemporalShipmentWorkflows{client: c, taskQueue: shipmentworkflows.ShipmentCreationTaskQueue}
}

// CreateShipment runs the creation workflow and waits for its result.
func (o *TemporalShipmentWorkflows) CreateShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal shipment workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildShipmentCreationWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		shipmentworkflows.ShipmentCreationWorkflow,
		shipmentworkflows.ShipmentCreationWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: creation of %q already in progress", application.ErrConflict, input.TrackingNumber)
		}
		return nil, err
	}
	var projection shipmenttypes.ShipmentProjection
	if err := run.Get(ctx, &projection); err != nil {
		return nil, fromWorkflowError(err)
	}
	return &projection, nil
}

// InlineShipmentWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineShipmentWorkflows struct {
	service ports.Service
}

// NewInlineShipmentWorkflows wraps the shipments service for synchronous execution.
func NewInlineShipmentWorkflows(service ports.Service) *InlineShipmentWorkflows {
	return &InlineShipmentWorkflows{service: service}
}

// CreateShipment delegates to the application service without durable orchestration.
func (o *InlineShipmentWorkflows) CreateShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline shipment workflows not configured")
	}
	return o.service.CreateShipment(ctx, input)
}

// fromWorkflowError restores the application error code carried as the Temporal error type.
func fromWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	sentinel := application.SentinelForCode(appErr.Type())
	return fmt.Errorf("%w: %s", sentinel, appErr.Message())
}

func buildShipmentCreationWorkflowID(input shipmenttypes.CreateShipmentInput, traceComponent string) string {
	tracking := strings.ToLower(strings.TrimSpace(input.TrackingNumber))
	if tracking == "" {
		tracking = "untracked"
	}
	return fmt.Sprintf("shipment-creation-%s-%s", tracking, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
