package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ledgerclient "github.com/Apurer/go-gin-shipment-api/internal/clients/http/ledger"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

// Submitter is the gateway operation the anchorer needs.
type Submitter interface {
	SubmitManageData(ctx context.Context, key *ledgerclient.Keypair, ops ...ledgerclient.ManageData) (string, error)
}

// Anchorer implements the outbound ledger anchoring port.
type Anchorer struct {
	client Submitter
	key    *ledgerclient.Keypair
	keyErr error
}

// NewAnchorer wires the gateway client with the signing seed. A missing or invalid
// seed does not fail construction; every Anchor call then reports ErrLedgerUnavailable.
func NewAnchorer(client Submitter, seed string) *Anchorer {
	a := &Anchorer{client: client}
	if strings.TrimSpace(seed) == "" {
		a.keyErr = errors.New("signing seed not set")
		return a
	}
	a.key, a.keyErr = ledgerclient.KeypairFromSeed(seed)
	return a
}

// Anchor writes the tracking number and route of a shipment as two manage-data entries.
func (a *Anchorer) Anchor(ctx context.Context, req ports.AnchorRequest) (domain.Anchor, error) {
	if a == nil || a.client == nil {
		return domain.Anchor{}, fmt.Errorf("%w: gateway client not configured", ports.ErrLedgerUnavailable)
	}
	if a.keyErr != nil {
		return domain.Anchor{}, fmt.Errorf("%w: %w", ports.ErrLedgerUnavailable, a.keyErr)
	}
	txRef, err := a.client.SubmitManageData(ctx, a.key, Operations(req)...)
	if err != nil {
		return domain.Anchor{}, classify(err)
	}
	return domain.Anchor{ID: AnchorID(req.ShipmentID, txRef), TxRef: txRef}, nil
}

// Operations are the ledger entries recorded for a shipment.
func Operations(req ports.AnchorRequest) []ledgerclient.ManageData {
	return []ledgerclient.ManageData{
		{Name: "tracking:" + req.ShipmentID, Value: []byte(req.TrackingNumber)},
		{Name: "route:" + req.ShipmentID, Value: []byte(req.Origin + "->" + req.Destination)},
	}
}

// AnchorID is "anchor:{shipmentId}:{first 8 chars of txRef}".
func AnchorID(shipmentID, txRef string) string {
	short := txRef
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("anchor:%s:%s", shipmentID, short)
}

func classify(err error) error {
	switch {
	case errors.Is(err, ledgerclient.ErrInvalidSeed):
		return fmt.Errorf("%w: %w", ports.ErrLedgerUnavailable, err)
	case errors.Is(err, ledgerclient.ErrRejected):
		return fmt.Errorf("%w: %w", ports.ErrLedgerRejected, err)
	default:
		return fmt.Errorf("%w: %w", ports.ErrLedgerTransport, err)
	}
}

var _ ports.LedgerAnchor = (*Anchorer)(nil)
