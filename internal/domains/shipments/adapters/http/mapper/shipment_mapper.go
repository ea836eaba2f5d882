package mapper

import (
	"time"

	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
)

// Milestone is the HTTP representation of an audit entry.
type Milestone struct {
	Name          string    `json:"name"`
	Timestamp     time.Time `json:"timestamp"`
	Description   string    `json:"description,omitempty"`
	UserID        string    `json:"userId,omitempty"`
	WalletAddress string    `json:"walletAddress,omitempty"`
}

// DeliveryProof is the HTTP representation of attached delivery evidence.
type DeliveryProof struct {
	Reference              string    `json:"reference"`
	RecipientSignatureName string    `json:"recipientSignatureName,omitempty"`
	UploadedAt             time.Time `json:"uploadedAt"`
}

// Shipment is the response body for every endpoint returning a shipment.
type Shipment struct {
	ID               string         `json:"id"`
	TrackingNumber   string         `json:"trackingNumber"`
	Origin           string         `json:"origin"`
	Destination      string         `json:"destination"`
	EnterpriseID     string         `json:"enterpriseId"`
	LogisticsID      string         `json:"logisticsId"`
	Status           string         `json:"status"`
	Milestones       []Milestone    `json:"milestones"`
	OffChainMetadata map[string]any `json:"offChainMetadata,omitempty"`
	AnchorID         string         `json:"anchorId,omitempty"`
	AnchorTxRef      string         `json:"anchorTxRef,omitempty"`
	DeliveryProof    *DeliveryProof `json:"deliveryProof,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// ShipmentPage is the listing envelope.
type ShipmentPage struct {
	Data  []Shipment `json:"data"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int64      `json:"total"`
}

// ProofUploadResponse wraps the shipment returned after a proof upload.
type ProofUploadResponse struct {
	Shipment Shipment `json:"shipment"`
}

// CreateShipment captures the creation payload. Status stays a pointer so absence is distinguishable.
type CreateShipment struct {
	TrackingNumber   string         `json:"trackingNumber"`
	Origin           string         `json:"origin"`
	Destination      string         `json:"destination"`
	EnterpriseID     string         `json:"enterpriseId"`
	LogisticsID      string         `json:"logisticsId"`
	Status           *string        `json:"status,omitempty"`
	Milestones       []Milestone    `json:"milestones,omitempty"`
	OffChainMetadata map[string]any `json:"offChainMetadata,omitempty"`
}

// PatchShipment captures the metadata replacement payload.
type PatchShipment struct {
	OffChainMetadata map[string]any `json:"offChainMetadata"`
}

// ChangeStatus captures the status transition payload.
type ChangeStatus struct {
	Status string `json:"status"`
}

// ToCreateInput maps the transport payload into the application command.
func ToCreateInput(payload CreateShipment) shipmenttypes.CreateShipmentInput {
	input := shipmenttypes.CreateShipmentInput{
		TrackingNumber:   payload.TrackingNumber,
		Origin:           payload.Origin,
		Destination:      payload.Destination,
		EnterpriseID:     payload.EnterpriseID,
		LogisticsID:      payload.LogisticsID,
		Status:           payload.Status,
		OffChainMetadata: payload.OffChainMetadata,
	}
	for _, m := range payload.Milestones {
		input.Milestones = append(input.Milestones, shipmenttypes.MilestoneInput{
			Name:          m.Name,
			Timestamp:     m.Timestamp,
			Description:   m.Description,
			UserID:        m.UserID,
			WalletAddress: m.WalletAddress,
		})
	}
	return input
}

// FromProjection maps a projection into the HTTP representation.
func FromProjection(p *shipmenttypes.ShipmentProjection) Shipment {
	if p == nil || p.Entity == nil {
		return Shipment{Milestones: []Milestone{}}
	}
	s := p.Entity
	out := Shipment{
		ID:               s.ID,
		TrackingNumber:   s.TrackingNumber,
		Origin:           s.Origin,
		Destination:      s.Destination,
		EnterpriseID:     s.EnterpriseID,
		LogisticsID:      s.LogisticsID,
		Status:           string(s.Status),
		Milestones:       make([]Milestone, 0, len(s.Milestones)),
		OffChainMetadata: s.OffChainMetadata,
		CreatedAt:        p.Metadata.CreatedAt,
		UpdatedAt:        p.Metadata.UpdatedAt,
	}
	for _, m := range s.Milestones {
		out.Milestones = append(out.Milestones, Milestone{
			Name:          string(m.Name),
			Timestamp:     m.Timestamp,
			Description:   m.Description,
			UserID:        m.UserID,
			WalletAddress: m.WalletAddress,
		})
	}
	if s.Anchor != nil {
		out.AnchorID = s.Anchor.ID
		out.AnchorTxRef = s.Anchor.TxRef
	}
	if s.DeliveryProof != nil {
		out.DeliveryProof = &DeliveryProof{
			Reference:              s.DeliveryProof.Reference,
			RecipientSignatureName: s.DeliveryProof.RecipientSignatureName,
			UploadedAt:             s.DeliveryProof.UploadedAt,
		}
	}
	return out
}

// FromPage maps a listing page.
func FromPage(page *shipmenttypes.ShipmentPage) ShipmentPage {
	out := ShipmentPage{Data: []Shipment{}}
	if page == nil {
		return out
	}
	out.Page = page.Page
	out.Limit = page.Limit
	out.Total = page.Total
	for _, item := range page.Items {
		out.Data = append(out.Data, FromProjection(item))
	}
	return out
}
