package directory

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

// Users adapts the users bounded context into the shipments user directory port.
type Users struct {
	users userports.Service
}

// NewUsers wires the users service as the actor directory.
func NewUsers(users userports.Service) *Users {
	return &Users{users: users}
}

// FindByID returns the directory entry for id.
func (d *Users) FindByID(ctx context.Context, id string) (*ports.DirectoryEntry, error) {
	if d == nil || d.users == nil {
		return nil, errors.New("user directory not configured")
	}
	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.DirectoryEntry{UserID: user.ID, WalletAddress: user.WalletAddress}, nil
}

var _ ports.UserDirectory = (*Users)(nil)
