package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a shipment.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every recognized lifecycle value in declaration order.
func Statuses() []Status {
	return []Status{StatusCreated, StatusInTransit, StatusDelivered, StatusCancelled}
}

// Valid reports whether the status is one of the recognized lifecycle values.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// ParseStatus converts raw input into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// Milestone is an immutable audit entry recording one status transition.
type Milestone struct {
	Name          Status
	Timestamp     time.Time
	Description   string
	UserID        string
	WalletAddress string
}

// Anchor references the ledger record proving the shipment identity.
type Anchor struct {
	ID    string
	TxRef string
}

// DeliveryProof captures evidence attached on physical delivery.
type DeliveryProof struct {
	Reference              string
	RecipientSignatureName string
	UploadedAt             time.Time
}

// Actor is the resolved identity credited with a transition.
type Actor struct {
	UserID        string
	WalletAddress string
}

// IsEmpty reports whether no attribution could be resolved.
func (a Actor) IsEmpty() bool {
	return a.UserID == "" && a.WalletAddress == ""
}

// Shipment is the aggregate managed by the shipments bounded context.
type Shipment struct {
	ID               string
	TrackingNumber   string
	Origin           string
	Destination      string
	EnterpriseID     string
	LogisticsID      string
	Status           Status
	Milestones       []Milestone
	OffChainMetadata map[string]any
	Anchor           *Anchor
	DeliveryProof    *DeliveryProof
}

var (
	ErrEmptyTrackingNumber = errors.New("tracking number is required")
	ErrEmptyOrigin         = errors.New("origin is required")
	ErrEmptyDestination    = errors.New("destination is required")
	ErrEmptyEnterprise     = errors.New("enterprise reference is required")
	ErrEmptyLogistics      = errors.New("logistics reference is required")
	ErrInvalidStatus       = errors.New("invalid shipment status")
	ErrMissingProofFile    = errors.New("delivery proof file is required")
	ErrAnchorAlreadySet    = errors.New("shipment already anchored")
)

// NewShipment validates the identifying fields and builds a shipment in CREATED state.
func NewShipment(id, trackingNumber, origin, destination, enterpriseID, logisticsID string) (*Shipment, error) {
	s := &Shipment{
		ID:             id,
		TrackingNumber: strings.TrimSpace(trackingNumber),
		Origin:         strings.TrimSpace(origin),
		Destination:    strings.TrimSpace(destination),
		EnterpriseID:   strings.TrimSpace(enterpriseID),
		LogisticsID:    strings.TrimSpace(logisticsID),
		Status:         StatusCreated,
	}
	switch {
	case s.TrackingNumber == "":
		return nil, ErrEmptyTrackingNumber
	case s.Origin == "":
		return nil, ErrEmptyOrigin
	case s.Destination == "":
		return nil, ErrEmptyDestination
	case s.EnterpriseID == "":
		return nil, ErrEmptyEnterprise
	case s.LogisticsID == "":
		return nil, ErrEmptyLogistics
	}
	return s, nil
}

// SeedMilestones replaces the audit log of a shipment that has not been persisted yet.
func (s *Shipment) SeedMilestones(milestones []Milestone) error {
	for _, m := range milestones {
		if !m.Name.Valid() {
			return fmt.Errorf("%w: milestone %q", ErrInvalidStatus, m.Name)
		}
	}
	s.Milestones = append([]Milestone{}, milestones...)
	return nil
}

// SeedStatus sets the initial status of a shipment that has not been persisted yet.
func (s *Shipment) SeedStatus(status Status) error {
	if status == "" {
		s.Status = StatusCreated
		return nil
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	s.Status = status
	return nil
}

// ChangeStatus moves the shipment to target, appending an attributed milestone.
// A transition to the current status is a no-op and reports changed=false.
func (s *Shipment) ChangeStatus(target Status, actor Actor, at time.Time, policy TransitionPolicy) (bool, error) {
	if !target.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	if s.Status == target {
		return false, nil
	}
	if policy != nil && !policy.Allows(s.Status, target) {
		return false, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, s.Status, target)
	}
	s.Milestones = append(s.Milestones, Milestone{
		Name:          target,
		Timestamp:     at,
		Description:   fmt.Sprintf("Status changed to %s", target),
		UserID:        actor.UserID,
		WalletAddress: actor.WalletAddress,
	})
	s.Status = target
	return true, nil
}

// ReplaceMetadata swaps the off-chain annotation without touching status or milestones.
func (s *Shipment) ReplaceMetadata(metadata map[string]any) {
	s.OffChainMetadata = cloneMetadata(metadata)
}

// AttachAnchor records the ledger anchor. The anchor is set at most once.
func (s *Shipment) AttachAnchor(anchor Anchor) error {
	if s.Anchor != nil {
		return ErrAnchorAlreadySet
	}
	attached := anchor
	s.Anchor = &attached
	return nil
}

// AttachDeliveryProof records delivery evidence; later proofs overwrite earlier ones.
func (s *Shipment) AttachDeliveryProof(reference, recipientSignatureName string, at time.Time) {
	s.DeliveryProof = &DeliveryProof{
		Reference:              reference,
		RecipientSignatureName: recipientSignatureName,
		UploadedAt:             at,
	}
}

// Clone returns a deep copy suitable for handing across adapter boundaries.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Milestones != nil {
		clone.Milestones = append([]Milestone{}, s.Milestones...)
	}
	clone.OffChainMetadata = cloneMetadata(s.OffChainMetadata)
	if s.Anchor != nil {
		anchor := *s.Anchor
		clone.Anchor = &anchor
	}
	if s.DeliveryProof != nil {
		proof := *s.DeliveryProof
		clone.DeliveryProof = &proof
	}
	return &clone
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	cloned := make(map[string]any, len(metadata))
	for k, v := range metadata {
		cloned[k] = v
	}
	return cloned
}
