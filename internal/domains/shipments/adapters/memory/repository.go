package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu         sync.RWMutex
	shipments  map[string]*storedShipment
	byTracking map[string]string
	seq        int64
	now        func() time.Time
}

type storedShipment struct {
	shipment *domain.Shipment
	metadata projection.Metadata
	seq      int64
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		shipments:  map[string]*storedShipment{},
		byTracking: map[string]string{},
		now:        time.Now,
	}
}

// WithClock overrides the timestamp source.
func (r *Repository) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Insert stores a new shipment, enforcing id and tracking number uniqueness.
func (r *Repository) Insert(_ context.Context, shipment *domain.Shipment) (*projection.Projection[*domain.Shipment], error) {
	if shipment == nil {
		return nil, errors.New("cannot insert nil shipment")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.shipments[shipment.ID]; exists {
		return nil, ports.ErrDuplicateID
	}
	if _, exists := r.byTracking[shipment.TrackingNumber]; exists {
		return nil, ports.ErrDuplicateTrackingNumber
	}
	timestamp := r.now()
	r.seq++
	stored := &storedShipment{
		shipment: shipment.Clone(),
		metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp},
		seq:      r.seq,
	}
	r.shipments[shipment.ID] = stored
	r.byTracking[shipment.TrackingNumber] = shipment.ID
	return projectionCopy(stored), nil
}

// GetByID fetches a shipment if present.
func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Shipment], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.shipments[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// Find returns matching shipments in insertion order.
func (r *Repository) Find(_ context.Context, filter ports.Filter, skip, limit int) ([]*projection.Projection[*domain.Shipment], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := r.matching(filter)
	if skip >= len(matches) {
		return []*projection.Projection[*domain.Shipment]{}, nil
	}
	if skip < 0 {
		skip = 0
	}
	end := len(matches)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	list := make([]*projection.Projection[*domain.Shipment], 0, end-skip)
	for _, entry := range matches[skip:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, nil
}

// Count returns the number of shipments matching filter.
func (r *Repository) Count(_ context.Context, filter ports.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

// Update applies mutate under the write lock so concurrent updates never interleave.
func (r *Repository) Update(_ context.Context, id string, mutate ports.Mutation) (*projection.Projection[*domain.Shipment], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.shipments[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := entry.shipment.Clone()
	changed, err := mutate(working)
	if err != nil {
		return nil, err
	}
	if changed {
		entry.shipment = working
		entry.metadata.UpdatedAt = r.now()
	}
	return projectionCopy(entry), nil
}

func (r *Repository) matching(filter ports.Filter) []*storedShipment {
	statuses := map[domain.Status]struct{}{}
	for _, s := range filter.Statuses {
		statuses[s] = struct{}{}
	}
	var list []*storedShipment
	for _, entry := range r.shipments {
		if len(statuses) > 0 {
			if _, ok := statuses[entry.shipment.Status]; !ok {
				continue
			}
		}
		if filter.EnterpriseID != "" && entry.shipment.EnterpriseID != filter.EnterpriseID {
			continue
		}
		if filter.LogisticsID != "" && entry.shipment.LogisticsID != filter.LogisticsID {
			continue
		}
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	return list
}

func projectionCopy(entry *storedShipment) *projection.Projection[*domain.Shipment] {
	return &projection.Projection[*domain.Shipment]{
		Entity:   entry.shipment.Clone(),
		Metadata: entry.metadata,
	}
}
