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

	userdomain "github.com/Apurer/go-gin-shipment-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-shipment-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/go-gin-shipment-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) CreateUser(ctx context.Context, user *userdomain.User) (*userdomain.User, error) {
	var id string
	if user != nil {
		id = user.ID
	}
	ctx, span := s.tracer.Start(ctx, "UserService.CreateUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	s.logInfo(ctx, "creating user", slog.String("user.id", id))
	result, err := s.inner.CreateUser(ctx, user)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create user", slog.String("user.id", id))
	}
	s.metrics.recordCreated(ctx, 1)
	s.logInfo(ctx, "user created", slog.String("user.id", result.ID), slog.String("role", string(result.Role)))
	return result, nil
}

func (s *Service) CreateUsers(ctx context.Context, users []*userdomain.User) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CreateUsers", trace.WithAttributes(attribute.Int("user.batch.count", len(users))))
	defer span.End()
	result, err := s.inner.CreateUsers(ctx, users)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create users")
	}
	s.metrics.recordCreated(ctx, int64(len(result)))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByID", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	return s.inner.GetByID(ctx, id)
}

func (s *Service) UpdateWallet(ctx context.Context, id, walletAddress string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateWallet", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	result, err := s.inner.UpdateWallet(ctx, id, walletAddress)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update wallet", slog.String("user.id", id))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	if err := s.inner.Delete(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete user", slog.String("user.id", id))
	}
	s.metrics.recordDeleted(ctx)
	return nil
}

func (s *Service) List(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()
	result, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("user.result.count", len(result)))
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
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
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	usersCreated metric.Int64Counter
	usersUpdated metric.Int64Counter
	usersDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("users.service.created", metric.WithDescription("Number of users created"))
	updated, _ := m.Int64Counter("users.service.wallet_updated", metric.WithDescription("Number of wallet address changes"))
	deleted, _ := m.Int64Counter("users.service.deleted", metric.WithDescription("Number of users deleted"))
	return serviceMetrics{usersCreated: created, usersUpdated: updated, usersDeleted: deleted}
}

func (m serviceMetrics) recordCreated(ctx context.Context, n int64) {
	if m.usersCreated != nil {
		m.usersCreated.Add(ctx, n)
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.usersUpdated != nil {
		m.usersUpdated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.usersDeleted != nil {
		m.usersDeleted.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
