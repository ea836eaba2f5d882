package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp  time.Time `json:"occurredAt"`
	ShipmentID string    `json:"shipmentId"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the shipment the event belongs to.
func (e BaseEvent) AggregateID() string {
	return e.ShipmentID
}

// ShipmentCreated is raised when a shipment is first persisted.
type ShipmentCreated struct {
	BaseEvent
	TrackingNumber string `json:"trackingNumber"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Status         Status `json:"status"`
}

// EventName returns the event type identifier.
func (e ShipmentCreated) EventName() string {
	return "shipments.shipment.created"
}

// StatusChanged is raised when a milestone is appended.
type StatusChanged struct {
	BaseEvent
	FromStatus    Status `json:"fromStatus"`
	ToStatus      Status `json:"toStatus"`
	UserID        string `json:"userId,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// EventName returns the event type identifier.
func (e StatusChanged) EventName() string {
	return "shipments.shipment.status_changed"
}

// ShipmentAnchored is raised when the ledger anchor is attached.
type ShipmentAnchored struct {
	BaseEvent
	AnchorID    string `json:"anchorId"`
	AnchorTxRef string `json:"anchorTxRef"`
}

// EventName returns the event type identifier.
func (e ShipmentAnchored) EventName() string {
	return "shipments.shipment.anchored"
}

// DeliveryProofAttached is raised when delivery evidence is stored.
type DeliveryProofAttached struct {
	BaseEvent
	Reference              string `json:"reference"`
	RecipientSignatureName string `json:"recipientSignatureName,omitempty"`
}

// EventName returns the event type identifier.
func (e DeliveryProofAttached) EventName() string {
	return "shipments.shipment.proof_attached"
}

// MetadataPatched is raised when the off-chain annotation is replaced.
type MetadataPatched struct {
	BaseEvent
	Keys []string `json:"keys"`
}

// EventName returns the event type identifier.
func (e MetadataPatched) EventName() string {
	return "shipments.shipment.metadata_patched"
}
