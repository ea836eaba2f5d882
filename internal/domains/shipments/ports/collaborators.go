package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

var (
	ErrLedgerUnavailable = errors.New("ledger signing credential not configured")
	ErrLedgerRejected    = errors.New("ledger rejected submission")
	ErrLedgerTransport   = errors.New("ledger transport failure")
)

// AnchorRequest carries the shipment identity written to the ledger.
type AnchorRequest struct {
	ShipmentID     string
	TrackingNumber string
	Origin         string
	Destination    string
}

// LedgerAnchor records shipment identity on an external ledger.
type LedgerAnchor interface {
	Anchor(ctx context.Context, req AnchorRequest) (domain.Anchor, error)
}

// ProofStorage persists delivery-proof files and returns an opaque reference.
type ProofStorage interface {
	Store(ctx context.Context, file *formdata.File) (string, error)
}

// DirectoryEntry is the subset of a user record the shipments context needs.
type DirectoryEntry struct {
	UserID        string
	WalletAddress string
}

// UserDirectory resolves callers to directory entries.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*DirectoryEntry, error)
}

// EventPublisher forwards domain events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
