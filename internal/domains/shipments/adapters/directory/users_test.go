package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shipmentmemory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/memory"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	usermemory "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/go-gin-shipment-api/internal/domains/users/application"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

func TestUsers_FeedsMilestoneAttribution(t *testing.T) {
	ctx := context.Background()
	users := userapp.NewService(usermemory.NewRepository())
	u1, err := domain.NewUser("u1", "u1@example.com", "Courier", domain.RoleManager)
	require.NoError(t, err)
	u1.UpdateWallet("0xABC")
	_, err = users.CreateUser(ctx, u1)
	require.NoError(t, err)

	dir := NewUsers(users)
	entry, err := dir.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "0xABC", entry.WalletAddress)

	_, err = dir.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, userports.ErrNotFound)

	svc := application.NewService(shipmentmemory.NewRepository(), application.WithUserDirectory(dir))
	created, err := svc.CreateShipment(ctx, shipmenttypes.CreateShipmentInput{
		TrackingNumber: "TN-001", Origin: "A", Destination: "B", EnterpriseID: "e", LogisticsID: "l",
	})
	require.NoError(t, err)
	updated, err := svc.ChangeStatus(ctx, shipmenttypes.ChangeStatusInput{ID: created.Entity.ID, Status: "IN_TRANSIT", CallerUserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "0xABC", updated.Entity.Milestones[0].WalletAddress)
}
