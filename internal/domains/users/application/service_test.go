package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

func TestCreateUserAndUpdateWallet(t *testing.T) {
	svc := NewService(memory.NewRepository())

	user, err := domain.NewUser("u1", "alice@example.com", "Alice", domain.RoleManager)
	require.NoError(t, err)
	created, err := svc.CreateUser(context.Background(), user)
	require.NoError(t, err)
	require.Empty(t, created.WalletAddress)

	updated, err := svc.UpdateWallet(context.Background(), "u1", " 0xABC ")
	require.NoError(t, err)
	require.Equal(t, "0xABC", updated.WalletAddress)

	fetched, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "0xABC", fetched.WalletAddress)
}

func TestCreateUser_Invalid(t *testing.T) {
	svc := NewService(memory.NewRepository())

	_, err := svc.CreateUser(context.Background(), &domain.User{ID: "u1", Name: "Bob", Email: "no-at-sign", Role: domain.RoleViewer})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateUser(context.Background(), &domain.User{ID: "u1", Name: "Bob", Email: "bob@example.com", Role: "PILOT"})
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := NewService(memory.NewRepository())
	first, err := domain.NewUser("u1", "alice@example.com", "Alice", "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleViewer, first.Role)
	_, err = svc.CreateUser(context.Background(), first)
	require.NoError(t, err)

	second, err := domain.NewUser("u2", "ALICE@example.com", "Other", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), second)
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateWallet_UnknownUser(t *testing.T) {
	svc := NewService(memory.NewRepository())
	_, err := svc.UpdateWallet(context.Background(), "ghost", "0x1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}
