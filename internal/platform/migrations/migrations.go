package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&shipmentRecord{},
		&userRecord{},
	)
}

// Shipment schema mirrors the shipments Postgres adapter.
type shipmentRecord struct {
	ID                 string         `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber     string         `gorm:"column:tracking_number;size:128;uniqueIndex"`
	Origin             string         `gorm:"column:origin"`
	Destination        string         `gorm:"column:destination"`
	EnterpriseID       string         `gorm:"column:enterprise_id;size:64;index"`
	LogisticsID        string         `gorm:"column:logistics_id;size:64;index"`
	Status             string         `gorm:"column:status;type:varchar(32);index"`
	Milestones         []any          `gorm:"column:milestones;serializer:json"`
	OffChainMetadata   map[string]any `gorm:"column:off_chain_metadata;serializer:json"`
	AnchorID           string         `gorm:"column:anchor_id"`
	AnchorTxRef        string         `gorm:"column:anchor_tx_ref"`
	ProofReference     string         `gorm:"column:proof_reference"`
	ProofSignatureName string         `gorm:"column:proof_signature_name"`
	ProofUploadedAt    *time.Time     `gorm:"column:proof_uploaded_at"`
	CreatedAt          time.Time      `gorm:"column:created_at;index"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (shipmentRecord) TableName() string { return "shipments" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID             string    `gorm:"primaryKey;column:id;size:64"`
	Email          string    `gorm:"column:email;size:255;uniqueIndex"`
	Name           string    `gorm:"column:name"`
	Role           string    `gorm:"column:role;type:varchar(32);index"`
	WalletAddress  string    `gorm:"column:wallet_address"`
	OrganizationID string    `gorm:"column:organization_id;size:64;index"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }
