package ports

import (
	"context"

	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
)

// Service defines the shipments use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error)
	// PersistShipment is the creation step without the ledger call, used by durable workflows.
	PersistShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error)
	AnchorShipment(ctx context.Context, input shipmenttypes.ShipmentIdentifier) (*shipmenttypes.ShipmentProjection, error)
	ChangeStatus(ctx context.Context, input shipmenttypes.ChangeStatusInput) (*shipmenttypes.ShipmentProjection, error)
	PatchMetadata(ctx context.Context, input shipmenttypes.PatchMetadataInput) (*shipmenttypes.ShipmentProjection, error)
	AttachDeliveryProof(ctx context.Context, input shipmenttypes.AttachDeliveryProofInput) (*shipmenttypes.ShipmentProjection, error)
	GetShipment(ctx context.Context, input shipmenttypes.ShipmentIdentifier) (*shipmenttypes.ShipmentProjection, error)
	ListShipments(ctx context.Context, input shipmenttypes.ListShipmentsInput) (*shipmenttypes.ShipmentPage, error)
}

// WorkflowOrchestrator exposes durable workflow operations required by the shipments bounded context.
type WorkflowOrchestrator interface {
	CreateShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error)
}
