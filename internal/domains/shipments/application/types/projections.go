package types

import (
	"time"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/projection"
)

// ShipmentProjection transports a shipment together with its persistence metadata.
type ShipmentProjection = projection.Projection[*domain.Shipment]

// NewShipmentProjection wraps an aggregate with persistence metadata.
func NewShipmentProjection(shipment *domain.Shipment, createdAt, updatedAt time.Time) *ShipmentProjection {
	if shipment == nil {
		return nil
	}
	return &ShipmentProjection{
		Entity: shipment,
		Metadata: projection.Metadata{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
	}
}
