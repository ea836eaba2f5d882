package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrConflict wraps uniqueness violations.
	ErrConflict = errors.New("user conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrInvalidRole) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrDuplicateEmail) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
