package application

import (
	"context"
	"errors"

	types "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

// AnchorState describes how a best-effort anchoring attempt ended.
type AnchorState string

const (
	AnchorAnchored AnchorState = "anchored"
	AnchorSkipped  AnchorState = "skipped"
	AnchorFailed   AnchorState = "failed"
)

// AnchorOutcome is the explicit result of the advisory ledger call.
// Projection is set only when State is AnchorAnchored; Err only when AnchorFailed.
type AnchorOutcome struct {
	State      AnchorState
	Projection *types.ShipmentProjection
	Err        error
}

func (s *Service) tryAnchor(ctx context.Context, current *types.ShipmentProjection) AnchorOutcome {
	if s.ledger == nil || current == nil || current.Entity == nil {
		return AnchorOutcome{State: AnchorSkipped}
	}
	shipment := current.Entity
	anchor, err := s.ledger.Anchor(ctx, ports.AnchorRequest{
		ShipmentID:     shipment.ID,
		TrackingNumber: shipment.TrackingNumber,
		Origin:         shipment.Origin,
		Destination:    shipment.Destination,
	})
	if err != nil {
		return AnchorOutcome{State: AnchorFailed, Err: err}
	}
	attached := false
	saved, err := s.repo.Update(ctx, shipment.ID, func(target *domain.Shipment) (bool, error) {
		if err := target.AttachAnchor(anchor); err != nil {
			if errors.Is(err, domain.ErrAnchorAlreadySet) {
				return false, nil
			}
			return false, err
		}
		attached = true
		return true, nil
	})
	if err != nil {
		return AnchorOutcome{State: AnchorFailed, Err: err}
	}
	if !attached {
		// a concurrent attempt won; the stored anchor stands
		return AnchorOutcome{State: AnchorAnchored, Projection: saved}
	}
	s.publish(ctx, domain.ShipmentAnchored{
		BaseEvent:   s.baseEvent(shipment.ID),
		AnchorID:    anchor.ID,
		AnchorTxRef: anchor.TxRef,
	})
	return AnchorOutcome{State: AnchorAnchored, Projection: saved}
}
