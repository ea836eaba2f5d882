package types

import (
	"time"

	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

// MilestoneInput seeds an audit entry at creation time.
type MilestoneInput struct {
	Name          string
	Timestamp     time.Time
	Description   string
	UserID        string
	WalletAddress string
}

// CreateShipmentInput carries the fields accepted when registering a shipment.
type CreateShipmentInput struct {
	// ID pre-assigns the shipment id. Durable callers set it once so retried
	// inserts of the same shipment can be recognised.
	ID               string
	TrackingNumber   string
	Origin           string
	Destination      string
	EnterpriseID     string
	LogisticsID      string
	Status           *string
	Milestones       []MilestoneInput
	OffChainMetadata map[string]any
}

// ShipmentIdentifier addresses a single shipment.
type ShipmentIdentifier struct {
	ID string
}

// ChangeStatusInput requests a status transition on behalf of an optional caller.
type ChangeStatusInput struct {
	ID           string
	Status       string
	CallerUserID string
}

// PatchMetadataInput replaces the off-chain annotation of a shipment.
type PatchMetadataInput struct {
	ID               string
	OffChainMetadata map[string]any
}

// AttachDeliveryProofInput carries a decoded upload and the signer name.
type AttachDeliveryProofInput struct {
	ID                     string
	File                   *formdata.File
	RecipientSignatureName string
}
