package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/projection"
)

var (
	ErrNotFound                = errors.New("shipment not found")
	ErrDuplicateTrackingNumber = errors.New("tracking number already exists")
	ErrDuplicateID             = errors.New("shipment id already exists")
)

// Filter is the typed equality predicate used for listing. Empty fields match everything.
type Filter struct {
	Statuses     []domain.Status
	EnterpriseID string
	LogisticsID  string
}

// Mutation edits a loaded shipment in place. Returning changed=false skips the write.
type Mutation func(shipment *domain.Shipment) (changed bool, err error)

type Repository interface {
	Insert(ctx context.Context, shipment *domain.Shipment) (*projection.Projection[*domain.Shipment], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Shipment], error)
	Find(ctx context.Context, filter Filter, skip, limit int) ([]*projection.Projection[*domain.Shipment], error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Update loads, mutates and saves the shipment as one atomic step with
	// respect to other Update calls on the same id.
	Update(ctx context.Context, id string, mutate Mutation) (*projection.Projection[*domain.Shipment], error)
}
