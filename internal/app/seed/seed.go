// Package seed populates a fresh environment with demo users and shipments.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	shipmentports "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	userdomain "github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

// Options controls how much data is generated.
type Options struct {
	Shipments int
	// Prefix is prepended to tracking numbers so repeated runs do not collide.
	Prefix string
}

// Result lists what was created.
type Result struct {
	Users     []*userdomain.User
	Shipments []string
}

var cities = []string{"Lagos", "Nairobi", "Accra", "Mombasa", "Kigali", "Dakar", "Cairo", "Durban"}

// routes walks each seeded shipment through a realistic lifecycle; index i takes routes[i%len(routes)].
var routes = [][]domain.Status{
	{},
	{domain.StatusInTransit},
	{domain.StatusInTransit, domain.StatusDelivered},
	{domain.StatusCancelled},
}

// Run creates one user per role and opts.Shipments shipments attributed to the manager.
func Run(ctx context.Context, users userports.Service, shipments shipmentports.Service, opts Options) (*Result, error) {
	if opts.Shipments < 0 {
		return nil, fmt.Errorf("shipment count must not be negative")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "SEED"
	}

	result := &Result{}
	var batch []*userdomain.User
	for _, role := range []userdomain.Role{userdomain.RoleAdmin, userdomain.RoleManager, userdomain.RoleViewer} {
		name := strings.ToLower(string(role))
		user, err := userdomain.NewUser(uuid.NewString(), fmt.Sprintf("%s.%s@example.com", name, strings.ToLower(prefix)), "Demo "+name, role)
		if err != nil {
			return nil, err
		}
		user.UpdateWallet("G" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:31])
		user.AssignOrganization("org-" + strings.ToLower(prefix))
		batch = append(batch, user)
	}
	created, err := users.CreateUsers(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	result.Users = created
	manager := created[1]

	for i := 0; i < opts.Shipments; i++ {
		origin := cities[i%len(cities)]
		destination := cities[(i+3)%len(cities)]
		projection, err := shipments.CreateShipment(ctx, shipmenttypes.CreateShipmentInput{
			TrackingNumber:   fmt.Sprintf("%s-%05d", prefix, i+1),
			Origin:           origin,
			Destination:      destination,
			EnterpriseID:     "ent-" + strings.ToLower(prefix),
			LogisticsID:      "log-" + strings.ToLower(prefix),
			OffChainMetadata: map[string]any{"seeded": true},
		})
		if err != nil {
			return nil, fmt.Errorf("create shipment %d: %w", i+1, err)
		}
		id := projection.Entity.ID
		for _, status := range routes[i%len(routes)] {
			if _, err := shipments.ChangeStatus(ctx, shipmenttypes.ChangeStatusInput{
				ID:           id,
				Status:       string(status),
				CallerUserID: manager.ID,
			}); err != nil {
				return nil, fmt.Errorf("advance shipment %s: %w", id, err)
			}
		}
		result.Shipments = append(result.Shipments, id)
	}
	return result, nil
}
