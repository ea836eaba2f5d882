package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

func mustShipment(t *testing.T, id, tracking string) *domain.Shipment {
	t.Helper()
	s, err := domain.NewShipment(id, tracking, "Rotterdam", "Hamburg", "ent-1", "log-1")
	require.NoError(t, err)
	return s
}

func TestRepository_InsertRejectsDuplicateTrackingNumber(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Insert(ctx, mustShipment(t, "a", "TN-1"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, mustShipment(t, "b", "TN-1"))
	require.ErrorIs(t, err, ports.ErrDuplicateTrackingNumber)
}

func TestRepository_InsertRejectsDuplicateID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Insert(ctx, mustShipment(t, "a", "TN-1"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, mustShipment(t, "a", "TN-2"))
	require.ErrorIs(t, err, ports.ErrDuplicateID)
	assert.NotErrorIs(t, err, ports.ErrDuplicateTrackingNumber)
}

func TestRepository_UpdateSkipsWriteWhenUnchanged(t *testing.T) {
	repo := NewRepository()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := start
	repo.WithClock(func() time.Time { return clock })
	ctx := context.Background()

	_, err := repo.Insert(ctx, mustShipment(t, "a", "TN-1"))
	require.NoError(t, err)

	clock = start.Add(time.Hour)
	proj, err := repo.Update(ctx, "a", func(*domain.Shipment) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, start, proj.Metadata.UpdatedAt)

	proj, err = repo.Update(ctx, "a", func(s *domain.Shipment) (bool, error) {
		s.ReplaceMetadata(map[string]any{"k": "v"})
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, start, proj.Metadata.CreatedAt)
	assert.Equal(t, clock, proj.Metadata.UpdatedAt)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Update(context.Background(), "nope", func(*domain.Shipment) (bool, error) { return true, nil })
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ReturnedProjectionsAreCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	saved, err := repo.Insert(ctx, mustShipment(t, "a", "TN-1"))
	require.NoError(t, err)

	saved.Entity.Status = domain.StatusCancelled
	fetched, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, fetched.Entity.Status)
}

func TestRepository_FindPagesInInsertionOrder(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := repo.Insert(ctx, mustShipment(t, fmt.Sprintf("id-%d", i), fmt.Sprintf("TN-%d", i)))
		require.NoError(t, err)
	}

	page, err := repo.Find(ctx, ports.Filter{}, 5, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "id-5", page[0].Entity.ID)
	assert.Equal(t, "id-6", page[1].Entity.ID)

	empty, err := repo.Find(ctx, ports.Filter{}, 50, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_ConcurrentUpdatesDoNotLoseMilestones(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Insert(ctx, mustShipment(t, "a", "TN-1"))
	require.NoError(t, err)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := domain.StatusInTransit
			if i%2 == 1 {
				target = domain.StatusCreated
			}
			_, _ = repo.Update(ctx, "a", func(s *domain.Shipment) (bool, error) {
				s.Milestones = append(s.Milestones, domain.Milestone{Name: target})
				s.Status = target
				return true, nil
			})
		}(i)
	}
	wg.Wait()

	fetched, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, fetched.Entity.Milestones, writers)
}
