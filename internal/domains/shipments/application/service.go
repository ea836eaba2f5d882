package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

// Service orchestrates the shipments bounded context use cases.
type Service struct {
	repo      ports.Repository
	ledger    ports.LedgerAnchor
	proofs    ports.ProofStorage
	publisher ports.EventPublisher
	actors    *ActorResolver
	policy    domain.TransitionPolicy
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures the Service.
type Option func(*Service)

// WithLedger enables best-effort anchoring of new shipments.
func WithLedger(ledger ports.LedgerAnchor) Option {
	return func(s *Service) {
		s.ledger = ledger
	}
}

// WithProofStorage sets the gateway used for delivery-proof uploads.
func WithProofStorage(storage ports.ProofStorage) Option {
	return func(s *Service) {
		s.proofs = storage
	}
}

// WithUserDirectory enables wallet attribution on milestones.
func WithUserDirectory(directory ports.UserDirectory) Option {
	return func(s *Service) {
		s.actors = NewActorResolver(directory, s.logger)
	}
}

// WithPublisher forwards domain events after successful writes.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithTransitionPolicy overrides the permissive default transition table.
func WithTransitionPolicy(policy domain.TransitionPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithLogger injects the logger used for advisory failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for milestones and proofs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides shipment id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the shipments service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		policy: domain.PermissiveTransitions(),
		logger: defaultLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.actors == nil {
		s.actors = NewActorResolver(nil, s.logger)
	} else {
		s.actors.logger = s.logger
	}
	return s
}

// CreateShipment persists a new shipment and then tries to anchor it.
// Anchoring never fails the call.
func (s *Service) CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*types.ShipmentProjection, error) {
	saved, err := s.PersistShipment(ctx, input)
	if err != nil {
		return nil, err
	}
	outcome := s.tryAnchor(ctx, saved)
	switch outcome.State {
	case AnchorAnchored:
		return outcome.Projection, nil
	case AnchorFailed:
		s.logger.LogAttrs(ctx, slog.LevelWarn, "shipment anchoring failed",
			slog.String("shipment.id", saved.Entity.ID),
			slog.String("error.kind", string(KindOf(outcome.Err))),
			slog.String("error", outcome.Err.Error()),
		)
	}
	return saved, nil
}

// PersistShipment validates and inserts a shipment without contacting the ledger.
// With a pre-assigned id, repeating the call for an already stored shipment returns
// the stored record instead of a conflict.
func (s *Service) PersistShipment(ctx context.Context, input types.CreateShipmentInput) (*types.ShipmentProjection, error) {
	shipment, err := s.buildShipment(input)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Insert(ctx, shipment)
	if err != nil {
		if existing, ok := s.priorInsert(ctx, input, err); ok {
			return existing, nil
		}
		return nil, mapError(err)
	}
	s.publish(ctx, domain.ShipmentCreated{
		BaseEvent:      s.baseEvent(saved.Entity.ID),
		TrackingNumber: saved.Entity.TrackingNumber,
		Origin:         saved.Entity.Origin,
		Destination:    saved.Entity.Destination,
		Status:         saved.Entity.Status,
	})
	return saved, nil
}

// AnchorShipment anchors an existing shipment and surfaces ledger failures.
// An already anchored shipment is returned unchanged.
func (s *Service) AnchorShipment(ctx context.Context, input types.ShipmentIdentifier) (*types.ShipmentProjection, error) {
	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if current.Entity.Anchor != nil {
		return current, nil
	}
	outcome := s.tryAnchor(ctx, current)
	switch outcome.State {
	case AnchorAnchored:
		return outcome.Projection, nil
	case AnchorSkipped:
		return nil, ErrLedgerUnavailable
	default:
		return nil, mapError(outcome.Err)
	}
}

// ChangeStatus validates the target, resolves the caller, and appends a milestone atomically.
func (s *Service) ChangeStatus(ctx context.Context, input types.ChangeStatusInput) (*types.ShipmentProjection, error) {
	target, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	actor := s.actors.Resolve(ctx, input.CallerUserID)
	var (
		from    domain.Status
		changed bool
	)
	saved, err := s.repo.Update(ctx, input.ID, func(shipment *domain.Shipment) (bool, error) {
		from = shipment.Status
		c, err := shipment.ChangeStatus(target, actor, s.now(), s.policy)
		changed = c
		return c, err
	})
	if err != nil {
		return nil, mapError(err)
	}
	if changed {
		s.publish(ctx, domain.StatusChanged{
			BaseEvent:     s.baseEvent(saved.Entity.ID),
			FromStatus:    from,
			ToStatus:      target,
			UserID:        actor.UserID,
			WalletAddress: actor.WalletAddress,
		})
	}
	return saved, nil
}

// PatchMetadata replaces the off-chain annotation.
func (s *Service) PatchMetadata(ctx context.Context, input types.PatchMetadataInput) (*types.ShipmentProjection, error) {
	saved, err := s.repo.Update(ctx, input.ID, func(shipment *domain.Shipment) (bool, error) {
		shipment.ReplaceMetadata(input.OffChainMetadata)
		return true, nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	keys := make([]string, 0, len(input.OffChainMetadata))
	for k := range input.OffChainMetadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.publish(ctx, domain.MetadataPatched{BaseEvent: s.baseEvent(saved.Entity.ID), Keys: keys})
	return saved, nil
}

// AttachDeliveryProof stores the uploaded file and records the returned reference.
func (s *Service) AttachDeliveryProof(ctx context.Context, input types.AttachDeliveryProofInput) (*types.ShipmentProjection, error) {
	if input.File == nil {
		return nil, mapError(domain.ErrMissingProofFile)
	}
	if _, err := s.repo.GetByID(ctx, input.ID); err != nil {
		return nil, mapError(err)
	}
	if s.proofs == nil {
		return nil, fmt.Errorf("%w: proof storage not configured", ErrStorageFailure)
	}
	reference, err := s.proofs.Store(ctx, input.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	uploadedAt := s.now()
	saved, err := s.repo.Update(ctx, input.ID, func(shipment *domain.Shipment) (bool, error) {
		shipment.AttachDeliveryProof(reference, input.RecipientSignatureName, uploadedAt)
		return true, nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.DeliveryProofAttached{
		BaseEvent:              s.baseEvent(saved.Entity.ID),
		Reference:              reference,
		RecipientSignatureName: input.RecipientSignatureName,
	})
	return saved, nil
}

// GetShipment loads a single shipment.
func (s *Service) GetShipment(ctx context.Context, input types.ShipmentIdentifier) (*types.ShipmentProjection, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// ListShipments returns one page of shipments matching the typed filter.
func (s *Service) ListShipments(ctx context.Context, input types.ListShipmentsInput) (*types.ShipmentPage, error) {
	page, limit, err := normalizePaging(input.Page, input.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	filter := ports.Filter{EnterpriseID: input.EnterpriseID, LogisticsID: input.LogisticsID}
	for _, raw := range input.Statuses {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	items, err := s.repo.Find(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &types.ShipmentPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func normalizePaging(page, limit int) (int, int, error) {
	if page < 0 {
		return 0, 0, fmt.Errorf("%w: page must be a positive integer", ErrValidation)
	}
	if limit < 0 {
		return 0, 0, fmt.Errorf("%w: limit must be a positive integer", ErrValidation)
	}
	if page == 0 {
		page = types.DefaultPage
	}
	if limit == 0 {
		limit = types.DefaultLimit
	}
	if limit > types.MaxLimit {
		limit = types.MaxLimit
	}
	return page, limit, nil
}

// priorInsert recognises a retried insert: the id was assigned by the caller and the
// stored row carries the same tracking number.
func (s *Service) priorInsert(ctx context.Context, input types.CreateShipmentInput, insertErr error) (*types.ShipmentProjection, bool) {
	if input.ID == "" {
		return nil, false
	}
	if !errors.Is(insertErr, ports.ErrDuplicateID) && !errors.Is(insertErr, ports.ErrDuplicateTrackingNumber) {
		return nil, false
	}
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil || existing.Entity == nil {
		return nil, false
	}
	if existing.Entity.TrackingNumber != strings.TrimSpace(input.TrackingNumber) {
		return nil, false
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "shipment already persisted",
		slog.String("shipment.id", input.ID),
		slog.String("shipment.tracking_number", existing.Entity.TrackingNumber),
	)
	return existing, true
}

func (s *Service) buildShipment(input types.CreateShipmentInput) (*domain.Shipment, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = s.newID()
	}
	shipment, err := domain.NewShipment(id, input.TrackingNumber, input.Origin, input.Destination, input.EnterpriseID, input.LogisticsID)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		if err := shipment.SeedStatus(domain.Status(*input.Status)); err != nil {
			return nil, err
		}
	}
	if len(input.Milestones) > 0 {
		milestones := make([]domain.Milestone, 0, len(input.Milestones))
		for _, m := range input.Milestones {
			timestamp := m.Timestamp
			if timestamp.IsZero() {
				timestamp = s.now()
			}
			milestones = append(milestones, domain.Milestone{
				Name:          domain.Status(m.Name),
				Timestamp:     timestamp,
				Description:   m.Description,
				UserID:        m.UserID,
				WalletAddress: m.WalletAddress,
			})
		}
		if err := shipment.SeedMilestones(milestones); err != nil {
			return nil, err
		}
	}
	shipment.ReplaceMetadata(input.OffChainMetadata)
	return shipment, nil
}

func (s *Service) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish shipment events",
			slog.String("event", events[0].EventName()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) baseEvent(shipmentID string) domain.BaseEvent {
	return domain.BaseEvent{Timestamp: s.now(), ShipmentID: shipmentID}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
