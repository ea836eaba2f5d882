package api

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-shipment-api/internal/clients/http/ledger"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

func TestBuildServices_InMemoryWithFilesystemProofs(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		LedgerNetwork:    ledger.NetworkTestnet,
		LedgerHorizonURL: "http://127.0.0.1:1",
		ProofStorageDir:  dir,
		ProofBaseURL:     "https://proofs.example.com",
	}
	services, cleanup, err := BuildServices(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	created, err := services.Shipments.CreateShipment(ctx, shipmenttypes.CreateShipmentInput{
		TrackingNumber: "TN-001",
		Origin:         "Lagos",
		Destination:    "Nairobi",
		EnterpriseID:   "ent-1",
		LogisticsID:    "log-1",
	})
	require.NoError(t, err)
	assert.Nil(t, created.Entity.Anchor)

	updated, err := services.Shipments.AttachDeliveryProof(ctx, shipmenttypes.AttachDeliveryProofInput{
		ID:                     created.Entity.ID,
		File:                   &formdata.File{Bytes: []byte("proof"), OriginalName: "proof.png", Size: 5},
		RecipientSignatureName: "John Doe",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.Entity.DeliveryProof.Reference, "https://proofs.example.com/"))
	assert.True(t, strings.HasSuffix(updated.Entity.DeliveryProof.Reference, ".png"))

	users, err := services.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestBuildServices_RejectsBadLedgerURL(t *testing.T) {
	_, _, err := BuildServices(context.Background(), Config{LedgerNetwork: ledger.NetworkTestnet}, nil)
	assert.ErrorContains(t, err, "ledger")
}
