package shipments

import (
	"github.com/google/uuid"
	"go.temporal.io/sdk/workflow"

	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/durable/temporal/sequences"
)

const (
	// ShipmentCreationWorkflowName is the public identifier for registering the workflow.
	ShipmentCreationWorkflowName = "shipments.workflows.Creation"
	// ShipmentCreationTaskQueue is the queue consumed by the worker processing shipment workflows.
	ShipmentCreationTaskQueue = "SHIPMENT_CREATION"
)

// ShipmentCreationWorkflowInput captures the payload required to register a shipment.
type ShipmentCreationWorkflowInput struct {
	Command shipmenttypes.CreateShipmentInput
	TraceID string
}

// ShipmentCreationWorkflow persists a shipment and anchors it on a best-effort basis.
func ShipmentCreationWorkflow(ctx workflow.Context, input ShipmentCreationWorkflowInput) (*shipmenttypes.ShipmentProjection, error) {
	logger := workflow.GetLogger(ctx)
	tracking := input.Command.TrackingNumber
	command := input.Command
	if command.ID == "" {
		// recorded once in history so every persist attempt inserts the same id
		if err := workflow.SideEffect(ctx, func(workflow.Context) interface{} {
			return uuid.NewString()
		}).Get(&command.ID); err != nil {
			return nil, err
		}
	}
	logger.Info("ShipmentCreationWorkflow started", withTraceID(input.TraceID, "trackingNumber", tracking, "shipmentId", command.ID)...)
	projection, err := sequences.RunShipmentCreationSequence(ctx, command)
	if err != nil {
		logger.Error("ShipmentCreationWorkflow failed", withTraceID(input.TraceID, "trackingNumber", tracking, "error", err)...)
		return nil, err
	}
	if projection != nil && projection.Entity != nil {
		logger.Info("ShipmentCreationWorkflow completed", withTraceID(input.TraceID, "shipmentId", projection.Entity.ID, "anchored", projection.Entity.Anchor != nil)...)
	} else {
		logger.Info("ShipmentCreationWorkflow completed", withTraceID(input.TraceID)...)
	}
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
