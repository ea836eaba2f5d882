package shipments

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	shipmentports "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

const (
	// PersistShipmentActivityName stores a new shipment without contacting the ledger.
	PersistShipmentActivityName = "shipments.activities.PersistShipment"
	// AnchorShipmentActivityName records an existing shipment on the ledger.
	AnchorShipmentActivityName = "shipments.activities.AnchorShipment"
)

// Activities groups activities that operate on the shipments bounded context.
type Activities struct {
	service shipmentports.Service
}

// NewActivities wires the shipments service into the Temporal activities bundle.
func NewActivities(service shipmentports.Service) *Activities {
	return &Activities{service: service}
}

// PersistShipment validates and inserts the shipment.
func (a *Activities) PersistShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("shipment persist activity not initialized", "trackingNumber", input.TrackingNumber)
		return nil, errors.New("shipment persist activity not initialized")
	}
	logger.Info("PersistShipment activity started", "trackingNumber", input.TrackingNumber)
	projection, err := a.service.PersistShipment(ctx, input)
	if err != nil {
		logger.Error("PersistShipment activity failed", "trackingNumber", input.TrackingNumber, "error", err)
		return nil, toApplicationError(err)
	}
	logger.Info("PersistShipment activity completed", "shipmentId", projection.Entity.ID)
	return projection, nil
}

// AnchorShipment anchors a persisted shipment. A heartbeat marks completion so a retried
// attempt after a lost response does not submit a second ledger transaction.
func (a *Activities) AnchorShipment(ctx context.Context, input shipmenttypes.ShipmentIdentifier) (*shipmenttypes.ShipmentProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("shipment anchor activity not initialized", "shipmentId", input.ID)
		return nil, errors.New("shipment anchor activity not initialized")
	}
	var hb anchorHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("AnchorShipment already completed in prior attempt; loading current state", "shipmentId", input.ID)
		projection, err := a.service.GetShipment(ctx, input)
		if err != nil {
			return nil, toApplicationError(err)
		}
		return projection, nil
	}

	logger.Info("AnchorShipment activity started", "shipmentId", input.ID)
	projection, err := a.service.AnchorShipment(ctx, input)
	if err != nil {
		logger.Warn("AnchorShipment activity failed", "shipmentId", input.ID, "error", err)
		return nil, toApplicationError(err)
	}
	activity.RecordHeartbeat(ctx, anchorHeartbeat{Completed: true})
	logger.Info("AnchorShipment activity completed", "shipmentId", input.ID)
	return projection, nil
}

type anchorHeartbeat struct {
	Completed bool
}

// toApplicationError carries the error code across the workflow boundary as the
// application error type. Only transport and internal failures are retried.
func toApplicationError(err error) error {
	code := application.CodeOf(err)
	switch application.KindOf(err) {
	case application.KindLedgerTransport, application.KindStorageFailure, application.KindInternal:
		return temporal.NewApplicationErrorWithCause(err.Error(), code, err)
	default:
		return temporal.NewNonRetryableApplicationError(err.Error(), code, err)
	}
}
