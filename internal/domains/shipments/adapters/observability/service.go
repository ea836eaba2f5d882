package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

const tracerName = "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/observability/service"

// Service decorates a shipments application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateShipment registers a shipment. A missing anchor on the result is counted, never raised.
func (s *Service) CreateShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateShipment", attribute.String("shipment.tracking_number", input.TrackingNumber))
	defer span.End()

	s.logInfo(ctx, "creating shipment", slog.String("shipment.tracking_number", input.TrackingNumber))
	result, err := s.inner.CreateShipment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create shipment", slog.String("shipment.tracking_number", input.TrackingNumber))
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordCreated(ctx, result.Entity.Status)
		anchored := result.Entity.Anchor != nil
		span.SetAttributes(attribute.String("shipment.id", result.Entity.ID), attribute.Bool("shipment.anchored", anchored))
		if !anchored {
			s.metrics.recordAnchorFailed(ctx)
		}
		s.logInfo(ctx, "shipment created",
			slog.String("shipment.id", result.Entity.ID),
			slog.String("status", string(result.Entity.Status)),
			slog.Bool("anchored", anchored),
		)
	}
	return result, nil
}

// PersistShipment inserts a shipment without touching the ledger.
func (s *Service) PersistShipment(ctx context.Context, input shipmenttypes.CreateShipmentInput) (*shipmenttypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.PersistShipment", attribute.String("shipment.tracking_number", input.TrackingNumber))
	defer span.End()

	result, err := s.inner.PersistShipment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to persist shipment", slog.String("shipment.tracking_number", input.TrackingNumber))
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordCreated(ctx, result.Entity.Status)
		s.logInfo(ctx, "shipment persisted", slog.String("shipment.id", result.Entity.ID))
	}
	return result, nil
}

// AnchorShipment records the shipment on the ledger.
func (s *Service) AnchorShipment(ctx context.Context, input shipmenttypes.ShipmentIdentifier) (*shipmenttypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AnchorShipment", attribute.String("shipment.id", input.ID))
	defer span.End()

	result, err := s.inner.AnchorShipment(ctx, input)
	if err != nil {
		s.metrics.recordAnchorFailed(ctx)
		return nil, s.handleError(ctx, span, err, "failed to anchor shipment", slog.String("shipment.id", input.ID))
	}
	if result != nil && result.Entity != nil && result.Entity.Anchor != nil {
		span.SetAttributes(attribute.String("shipment.anchor_tx_ref", result.Entity.Anchor.TxRef))
		s.logInfo(ctx, "shipment anchored", slog.String("shipment.id", input.ID), slog.String("anchor.id", result.Entity.Anchor.ID))
	}
	return result, nil
}

// ChangeStatus applies a status transition.
func (s *Service) ChangeStatus(ctx context.Context, input shipmenttypes.ChangeStatusInput) (*shipmenttypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ChangeStatus",
		attribute.String("shipment.id", input.ID),
		attribute.String("shipment.status.requested", input.Status),
	)
	defer span.End()

	s.logInfo(ctx, "changing shipment status", slog.String("shipment.id", input.ID), slog.String("status", input.Status))
	result, err := s.inner.ChangeStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change shipment status", slog.String("shipment.id", input.ID))
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordStatusChanged(ctx, result.Entity.Status)
		span.SetAttributes(attribute.Int("shipment.milestones", len(result.Entity.Milestones)))
		s.logInfo(ctx, "shipment status changed",
			slog.String("shipment.id", result.Entity.ID),
			slog.String("status", string(result.Entity.Status)),
		)
	}
	return result, nil
}

// PatchMetadata replaces off-chain metadata.
func (s *Service) PatchMetadata(ctx context.Context, input shipmenttypes.PatchMetadataInput) (*shipmenttypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.PatchMetadata", attribute.String("shipment.id", input.ID))
	defer span.End()

	result, err := s.inner.PatchMetadata(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to patch shipment metadata", slog.String("shipment.id", input.ID))
	}
	s.logInfo(ctx, "shipment metadata patched", slog.String("shipment.id", input.ID), slog.Int("keys", len(input.OffChainMetadata)))
	return result, nil
}

// AttachDeliveryProof stores an uploaded proof and links it to the shipment.
func (s *Service) AttachDeliveryProof(ctx context.Context, input shipmenttypes.AttachDeliveryProofInput) (*shipmenttypes.ShipmentProjection, error) {
	attrs := []attribute.KeyValue{attribute.String("shipment.id", input.ID)}
	if input.File != nil {
		attrs = append(attrs,
			attribute.String("proof.filename", input.File.OriginalName),
			attribute.String("proof.mime_type", input.File.MimeType),
			attribute.Int("proof.size", input.File.Size),
		)
	}
	ctx, span := s.startSpan(ctx, "Service.AttachDeliveryProof", attrs...)
	defer span.End()

	s.logInfo(ctx, "attaching delivery proof", slog.String("shipment.id", input.ID))
	result, err := s.inner.AttachDeliveryProof(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to attach delivery proof", slog.String("shipment.id", input.ID))
	}
	s.metrics.recordProofAttached(ctx)
	if result != nil && result.Entity != nil && result.Entity.DeliveryProof != nil {
		s.logInfo(ctx, "delivery proof attached",
			slog.String("shipment.id", input.ID),
			slog.String("proof.reference", result.Entity.DeliveryProof.Reference),
		)
	}
	return result, nil
}

// GetShipment loads a single shipment.
func (s *Service) GetShipment(ctx context.Context, input shipmenttypes.ShipmentIdentifier) (*shipmenttypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetShipment", attribute.String("shipment.id", input.ID))
	defer span.End()

	result, err := s.inner.GetShipment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load shipment", slog.String("shipment.id", input.ID))
	}
	return result, nil
}

// ListShipments returns one page of shipments.
func (s *Service) ListShipments(ctx context.Context, input shipmenttypes.ListShipmentsInput) (*shipmenttypes.ShipmentPage, error) {
	ctx, span := s.startSpan(ctx, "Service.ListShipments",
		attribute.StringSlice("shipment.statuses.requested", input.Statuses),
		attribute.Int("page", input.Page),
		attribute.Int("limit", input.Limit),
	)
	defer span.End()

	s.logInfo(ctx, "listing shipments", slog.Any("statuses", input.Statuses), slog.Int("page", input.Page))
	result, err := s.inner.ListShipments(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list shipments", slog.Any("statuses", input.Statuses))
	}
	if result != nil {
		span.SetAttributes(attribute.Int("shipment.result.count", len(result.Items)), attribute.Int64("shipment.result.total", result.Total))
		s.logInfo(ctx, "listed shipments", slog.Int("count", len(result.Items)), slog.Int64("total", result.Total))
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	level := slog.LevelError
	kind := application.KindOf(err)
	switch kind {
	case application.KindValidation, application.KindNotFound, application.KindConflict:
		level = slog.LevelWarn
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()), slog.String("error.kind", string(kind)))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", string(application.KindOf(err))))
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	created       metric.Int64Counter
	statusChanged metric.Int64Counter
	proofAttached metric.Int64Counter
	anchorFailed  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("shipments.service.created", metric.WithDescription("Number of shipments created"))
	statusChanged, _ := m.Int64Counter("shipments.service.status_changed", metric.WithDescription("Number of status change requests applied"))
	proofAttached, _ := m.Int64Counter("shipments.service.proof_attached", metric.WithDescription("Number of delivery proofs attached"))
	anchorFailed, _ := m.Int64Counter("shipments.service.anchor_failed", metric.WithDescription("Number of shipments left without a ledger anchor"))
	return serviceMetrics{
		created:       created,
		statusChanged: statusChanged,
		proofAttached: proofAttached,
		anchorFailed:  anchorFailed,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.created, 1, attribute.String("shipment.status", string(status)))
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.statusChanged, 1, attribute.String("shipment.status", string(status)))
}

func (m serviceMetrics) recordProofAttached(ctx context.Context) {
	addCounter(ctx, m.proofAttached, 1)
}

func (m serviceMetrics) recordAnchorFailed(ctx context.Context) {
	addCounter(ctx, m.anchorFailed, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
