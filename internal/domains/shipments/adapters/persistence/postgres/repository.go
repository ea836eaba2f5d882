package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists shipments in PostgreSQL using GORM-mapped columns.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		if err := db.AutoMigrate(&shipmentRecord{}); err != nil {
			log.Printf("postgres shipment repository migration failed: %v", err)
		}
	}
	return repo
}

type shipmentRecord struct {
	ID                 string            `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber     string            `gorm:"column:tracking_number;size:128;uniqueIndex"`
	Origin             string            `gorm:"column:origin"`
	Destination        string            `gorm:"column:destination"`
	EnterpriseID       string            `gorm:"column:enterprise_id;size:64;index"`
	LogisticsID        string            `gorm:"column:logistics_id;size:64;index"`
	Status             string            `gorm:"column:status;type:varchar(32);index"`
	Milestones         []milestoneRecord `gorm:"column:milestones;serializer:json"`
	OffChainMetadata   map[string]any    `gorm:"column:off_chain_metadata;serializer:json"`
	AnchorID           string            `gorm:"column:anchor_id"`
	AnchorTxRef        string            `gorm:"column:anchor_tx_ref"`
	ProofReference     string            `gorm:"column:proof_reference"`
	ProofSignatureName string            `gorm:"column:proof_signature_name"`
	ProofUploadedAt    *time.Time        `gorm:"column:proof_uploaded_at"`
	CreatedAt          time.Time         `gorm:"column:created_at;index"`
	UpdatedAt          time.Time         `gorm:"column:updated_at"`
}

func (shipmentRecord) TableName() string { return "shipments" }

type milestoneRecord struct {
	Name          string    `json:"name"`
	Timestamp     time.Time `json:"timestamp"`
	Description   string    `json:"description,omitempty"`
	UserID        string    `json:"userId,omitempty"`
	WalletAddress string    `json:"walletAddress,omitempty"`
}

func newShipmentRecord(s *domain.Shipment) shipmentRecord {
	rec := shipmentRecord{
		ID:               s.ID,
		TrackingNumber:   s.TrackingNumber,
		Origin:           s.Origin,
		Destination:      s.Destination,
		EnterpriseID:     s.EnterpriseID,
		LogisticsID:      s.LogisticsID,
		Status:           string(s.Status),
		OffChainMetadata: s.Clone().OffChainMetadata,
	}
	if len(s.Milestones) > 0 {
		rec.Milestones = make([]milestoneRecord, 0, len(s.Milestones))
		for _, m := range s.Milestones {
			rec.Milestones = append(rec.Milestones, milestoneRecord{
				Name:          string(m.Name),
				Timestamp:     m.Timestamp,
				Description:   m.Description,
				UserID:        m.UserID,
				WalletAddress: m.WalletAddress,
			})
		}
	}
	if s.Anchor != nil {
		rec.AnchorID = s.Anchor.ID
		rec.AnchorTxRef = s.Anchor.TxRef
	}
	if s.DeliveryProof != nil {
		uploadedAt := s.DeliveryProof.UploadedAt
		rec.ProofReference = s.DeliveryProof.Reference
		rec.ProofSignatureName = s.DeliveryProof.RecipientSignatureName
		rec.ProofUploadedAt = &uploadedAt
	}
	return rec
}

// Insert creates a shipment row. A primary key collision surfaces as ErrDuplicateID,
// any other unique violation as ErrDuplicateTrackingNumber.
func (r *Repository) Insert(ctx context.Context, shipment *domain.Shipment) (*projection.Projection[*domain.Shipment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, errors.New("cannot insert nil shipment")
	}
	record := newShipmentRecord(shipment)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		// requires gorm.Config.TranslateError
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, r.duplicateCause(ctx, shipment.ID)
		}
		return nil, err
	}
	return r.GetByID(ctx, shipment.ID)
}

// GetByID fetches a shipment by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Shipment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record shipmentRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toProjection(&record), nil
}

// Find returns a page of shipments ordered by creation time.
func (r *Repository) Find(ctx context.Context, filter ports.Filter, skip, limit int) ([]*projection.Projection[*domain.Shipment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.filtered(ctx, filter).Order("created_at ASC").Order("id ASC")
	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []shipmentRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*projection.Projection[*domain.Shipment], 0, len(records))
	for i := range records {
		list = append(list, toProjection(&records[i]))
	}
	return list, nil
}

// Count returns the number of shipments matching filter.
func (r *Repository) Count(ctx context.Context, filter ports.Filter) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Update loads the row FOR UPDATE inside a transaction, so concurrent mutations serialize.
func (r *Repository) Update(ctx context.Context, id string, mutate ports.Mutation) (*projection.Projection[*domain.Shipment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var result *projection.Projection[*domain.Shipment]
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record shipmentRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		working := record.toDomain()
		changed, err := mutate(working)
		if err != nil {
			return err
		}
		if !changed {
			result = toProjection(&record)
			return nil
		}
		updated := newShipmentRecord(working)
		updated.CreatedAt = record.CreatedAt
		if err := tx.Save(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrDuplicateTrackingNumber
			}
			return err
		}
		result = toProjection(&updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) duplicateCause(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&shipmentRecord{}).Where("id = ?", id).Count(&count).Error; err == nil && count > 0 {
		return ports.ErrDuplicateID
	}
	return ports.ErrDuplicateTrackingNumber
}

func (r *Repository) filtered(ctx context.Context, filter ports.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&shipmentRecord{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status = ANY(?)", pq.Array(statuses))
	}
	if filter.EnterpriseID != "" {
		query = query.Where("enterprise_id = ?", filter.EnterpriseID)
	}
	if filter.LogisticsID != "" {
		query = query.Where("logistics_id = ?", filter.LogisticsID)
	}
	return query
}

func toProjection(record *shipmentRecord) *projection.Projection[*domain.Shipment] {
	if record == nil {
		return nil
	}
	return &projection.Projection[*domain.Shipment]{
		Entity:   record.toDomain(),
		Metadata: projection.Metadata{CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt},
	}
}

func (r *shipmentRecord) toDomain() *domain.Shipment {
	shipment := &domain.Shipment{
		ID:               r.ID,
		TrackingNumber:   r.TrackingNumber,
		Origin:           r.Origin,
		Destination:      r.Destination,
		EnterpriseID:     r.EnterpriseID,
		LogisticsID:      r.LogisticsID,
		Status:           domain.Status(r.Status),
		OffChainMetadata: r.OffChainMetadata,
	}
	if len(r.Milestones) > 0 {
		shipment.Milestones = make([]domain.Milestone, 0, len(r.Milestones))
		for _, m := range r.Milestones {
			shipment.Milestones = append(shipment.Milestones, domain.Milestone{
				Name:          domain.Status(m.Name),
				Timestamp:     m.Timestamp,
				Description:   m.Description,
				UserID:        m.UserID,
				WalletAddress: m.WalletAddress,
			})
		}
	}
	if r.AnchorID != "" || r.AnchorTxRef != "" {
		shipment.Anchor = &domain.Anchor{ID: r.AnchorID, TxRef: r.AnchorTxRef}
	}
	if r.ProofReference != "" {
		proof := domain.DeliveryProof{
			Reference:              r.ProofReference,
			RecipientSignatureName: r.ProofSignatureName,
		}
		if r.ProofUploadedAt != nil {
			proof.UploadedAt = *r.ProofUploadedAt
		}
		shipment.DeliveryProof = &proof
	}
	return shipment.Clone()
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres shipment repository not configured")
	}
	return nil
}
