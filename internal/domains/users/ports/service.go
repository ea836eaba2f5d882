package ports

import (
	"context"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	CreateUsers(ctx context.Context, users []*domain.User) ([]*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateWallet(ctx context.Context, id, walletAddress string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)
}
