package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	shipmentactivities "github.com/Apurer/go-gin-shipment-api/internal/durable/temporal/activities/shipments"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
)

// RunShipmentCreationSequence persists the shipment, then tries to anchor it.
// Anchoring failures are logged and the persisted projection is returned.
func RunShipmentCreationSequence(ctx workflow.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("shipment creation sequence started", "trackingNumber", input.TrackingNumber)

	persistCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})
	var persisted shipmenttypes.ShipmentProjection
	if err := workflow.ExecuteActivity(persistCtx, shipmentactivities.PersistShipmentActivityName, input).Get(ctx, &persisted); err != nil {
		logger.Error("shipment creation sequence failed", "trackingNumber", input.TrackingNumber, "error", err)
		return nil, err
	}

	// the ledger transaction is only valid for 30s, so retries stay inside that window
	anchorCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var anchored shipmenttypes.ShipmentProjection
	identifier := shipmenttypes.ShipmentIdentifier{ID: persisted.Entity.ID}
	if err := workflow.ExecuteActivity(anchorCtx, shipmentactivities.AnchorShipmentActivityName, identifier).Get(ctx, &anchored); err != nil {
		logger.Warn("shipment anchoring skipped", "shipmentId", identifier.ID, "error", err)
		return &persisted, nil
	}
	logger.Info("shipment creation sequence completed", "shipmentId", identifier.ID)
	return &anchored, nil
}
