package api

import (
	"context"
	"fmt"
	"log/slog"

	ledgerclient "github.com/Apurer/go-gin-shipment-api/internal/clients/http/ledger"
	shipmentsdirectory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/directory"
	shipmentledger "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/external/ledger"
	shipmentsmemory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/memory"
	shipmentskafka "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/messaging/kafka"
	shipmentsobs "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/observability"
	shipmentspostgres "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/proofstore"
	shipmentsapp "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmentports "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	usermemory "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-gin-shipment-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
	platformobservability "github.com/Apurer/go-gin-shipment-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-shipment-api/internal/platform/postgres"
)

// Services bundles the decorated application services shared by the API, the worker and the seeder.
type Services struct {
	Shipments shipmentports.Service
	Users     userports.Service
}

// BuildServices wires repositories and collaborators according to cfg. The returned
// cleanup releases connections, writers and encoders in reverse order.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	logger := effectiveLogger(instruments)
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db, closeDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)

	var (
		shipmentRepo shipmentports.Repository = shipmentsmemory.NewRepository()
		userRepo     userports.Repository     = usermemory.NewRepository()
	)
	if db != nil {
		shipmentRepo = shipmentspostgres.NewRepository(db)
		userRepo = userpostgres.NewRepository(db)
		logger.Info("shipment and user repositories configured with postgres")
	}

	users := userobs.New(
		userapp.NewService(userRepo),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	client, err := ledgerclient.NewClient(cfg.LedgerHorizonURL, cfg.LedgerNetwork)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("configure ledger client: %w", err)
	}
	if cfg.LedgerSecretSeed == "" {
		logger.Warn("LEDGER_SECRET_SEED not set, shipments will not be anchored")
	}

	opts := []shipmentsapp.Option{
		shipmentsapp.WithLogger(logger),
		shipmentsapp.WithLedger(shipmentledger.NewAnchorer(client, cfg.LedgerSecretSeed)),
		shipmentsapp.WithUserDirectory(shipmentsdirectory.NewUsers(users)),
	}

	if cfg.ProofStorageDir != "" {
		storage, err := proofstore.NewFilesystemStorage(cfg.ProofStorageDir, cfg.ProofBaseURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("configure proof storage: %w", err)
		}
		cleanups = append(cleanups, storage.Close)
		opts = append(opts, shipmentsapp.WithProofStorage(storage))
		logger.Info("proof storage configured on filesystem", slog.String("dir", cfg.ProofStorageDir))
	} else {
		opts = append(opts, shipmentsapp.WithProofStorage(proofstore.NewMockStorage()))
		logger.Warn("PROOF_STORAGE_DIR not set, using mock proof storage")
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := shipmentskafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("configure event publisher: %w", err)
		}
		cleanups = append(cleanups, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close event publisher", slog.String("error", err.Error()))
			}
		})
		opts = append(opts, shipmentsapp.WithPublisher(publisher))
		logger.Info("shipment events published to kafka", slog.String("topic", cfg.KafkaTopic))
	}

	shipments := shipmentsobs.New(
		shipmentsapp.NewService(shipmentRepo, opts...),
		shipmentsobs.WithLogger(logger),
		shipmentsobs.WithTracer(instruments.Tracer("internal.shipments.application")),
		shipmentsobs.WithMeter(instruments.Meter("internal.shipments.application")),
	)
	return &Services{Shipments: shipments, Users: users}, cleanup, nil
}
