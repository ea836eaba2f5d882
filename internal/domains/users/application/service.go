package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	if existing, err := s.repo.GetByEmail(ctx, user.Email); err == nil && existing.ID != user.ID {
		return nil, mapError(ports.ErrDuplicateEmail)
	} else if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, user)
	return saved, mapError(err)
}

func (s *Service) CreateUsers(ctx context.Context, users []*domain.User) ([]*domain.User, error) {
	var saved []*domain.User
	for _, u := range users {
		persisted, err := s.CreateUser(ctx, u)
		if err != nil {
			return nil, err
		}
		saved = append(saved, persisted)
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateWallet(ctx context.Context, id, walletAddress string) (*domain.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.UpdateWallet(walletAddress)
	saved, err := s.repo.Save(ctx, existing)
	return saved, mapError(err)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

var _ ports.Service = (*Service)(nil)
