//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	shipmentspostgres "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("shipments_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newShipment(t *testing.T, id, tracking string) *domain.Shipment {
	t.Helper()
	shipment, err := domain.NewShipment(id, tracking, "Lagos", "Nairobi", "ent-1", "log-1")
	require.NoError(t, err)
	return shipment
}

func TestRepository_InsertAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := shipmentspostgres.NewRepository(db)
	ctx := context.Background()

	shipment := newShipment(t, "s-1", "TN-001")
	shipment.ReplaceMetadata(map[string]any{"temperature": "4C"})
	saved, err := repo.Insert(ctx, shipment)
	require.NoError(t, err)
	assert.Equal(t, "TN-001", saved.Entity.TrackingNumber)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, fetched.Entity.Status)
	assert.Equal(t, "4C", fetched.Entity.OffChainMetadata["temperature"])

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DuplicateTrackingNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := shipmentspostgres.NewRepository(db)
	ctx := context.Background()

	_, err := repo.Insert(ctx, newShipment(t, "s-1", "TN-001"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newShipment(t, "s-2", "TN-001"))
	assert.ErrorIs(t, err, ports.ErrDuplicateTrackingNumber)
}

func TestRepository_UpdatePersistsMilestonesAnchorAndProof(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := shipmentspostgres.NewRepository(db)
	ctx := context.Background()
	_, err := repo.Insert(ctx, newShipment(t, "s-1", "TN-001"))
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = repo.Update(ctx, "s-1", func(s *domain.Shipment) (bool, error) {
		changed, err := s.ChangeStatus(domain.StatusInTransit, domain.Actor{UserID: "u1", WalletAddress: "0xABC"}, at, nil)
		if err != nil {
			return false, err
		}
		if err := s.AttachAnchor(domain.Anchor{ID: "anchor:s-1:deadbeef", TxRef: "deadbeefcafe"}); err != nil {
			return false, err
		}
		s.AttachDeliveryProof("https://mock-storage.com/proof1.jpg", "John Doe", at)
		return changed, nil
	})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, fetched.Entity.Milestones, 1)
	assert.Equal(t, "0xABC", fetched.Entity.Milestones[0].WalletAddress)
	assert.True(t, at.Equal(fetched.Entity.Milestones[0].Timestamp))
	require.NotNil(t, fetched.Entity.Anchor)
	assert.Equal(t, "deadbeefcafe", fetched.Entity.Anchor.TxRef)
	require.NotNil(t, fetched.Entity.DeliveryProof)
	assert.Equal(t, "John Doe", fetched.Entity.DeliveryProof.RecipientSignatureName)

	_, err = repo.Update(ctx, "missing", func(*domain.Shipment) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ConcurrentUpdatesSerialize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := shipmentspostgres.NewRepository(db)
	ctx := context.Background()
	_, err := repo.Insert(ctx, newShipment(t, "s-1", "TN-001"))
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, "s-1", func(s *domain.Shipment) (bool, error) {
				s.Milestones = append(s.Milestones, domain.Milestone{Name: domain.StatusInTransit, Description: fmt.Sprintf("writer %d", i)})
				return true, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	fetched, err := repo.GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, fetched.Entity.Milestones, writers)
}

func TestRepository_FindAndCountWithFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := shipmentspostgres.NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		shipment := newShipment(t, fmt.Sprintf("s-%d", i), fmt.Sprintf("TN-%03d", i))
		if i%2 == 0 {
			require.NoError(t, shipment.SeedStatus(domain.StatusDelivered))
		}
		_, err := repo.Insert(ctx, shipment)
		require.NoError(t, err)
	}

	filter := ports.Filter{Statuses: []domain.Status{domain.StatusDelivered}}
	total, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	page, err := repo.Find(ctx, filter, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, domain.StatusDelivered, page[0].Entity.Status)

	all, err := repo.Find(ctx, ports.Filter{EnterpriseID: "ent-1"}, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}
