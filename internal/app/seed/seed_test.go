package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shipmentsdirectory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/directory"
	shipmentsmemory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/memory"
	shipmentsapp "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	usermemory "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/go-gin-shipment-api/internal/domains/users/application"
	userdomain "github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
)

func TestRun_SeedsUsersAndShipmentLifecycles(t *testing.T) {
	ctx := context.Background()
	users := userapp.NewService(usermemory.NewRepository())
	shipments := shipmentsapp.NewService(shipmentsmemory.NewRepository(), shipmentsapp.WithUserDirectory(shipmentsdirectory.NewUsers(users)))

	result, err := Run(ctx, users, shipments, Options{Shipments: 8, Prefix: "demo"})
	require.NoError(t, err)
	require.Len(t, result.Users, 3)
	assert.True(t, result.Users[0].HasRole(userdomain.RoleAdmin))
	require.Len(t, result.Shipments, 8)

	delivered, err := shipments.ListShipments(ctx, shipmenttypes.ListShipmentsInput{Statuses: []string{string(domain.StatusDelivered)}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), delivered.Total)

	third, err := shipments.GetShipment(ctx, shipmenttypes.ShipmentIdentifier{ID: result.Shipments[2]})
	require.NoError(t, err)
	assert.Equal(t, "demo-00003", third.Entity.TrackingNumber)
	require.Len(t, third.Entity.Milestones, 2)
	assert.Equal(t, result.Users[1].ID, third.Entity.Milestones[1].UserID)
	assert.Equal(t, result.Users[1].WalletAddress, third.Entity.Milestones[1].WalletAddress)

	_, err = Run(ctx, users, shipments, Options{Shipments: 1, Prefix: "demo"})
	assert.Error(t, err)
}

func TestRun_RejectsNegativeCount(t *testing.T) {
	_, err := Run(context.Background(), nil, nil, Options{Shipments: -1})
	assert.Error(t, err)
}
