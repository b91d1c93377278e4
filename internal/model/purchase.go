package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseType classifies how a supplier acquisition is measured and priced.
type PurchaseType string

const (
	PurchaseLooseBeads       PurchaseType = "LOOSE_BEADS"
	PurchaseBracelet         PurchaseType = "BRACELET"
	PurchaseAccessories      PurchaseType = "ACCESSORIES"
	PurchaseFinishedMaterial PurchaseType = "FINISHED_MATERIAL"
)

// Valid reports whether t is one of the four supported purchase types.
func (t PurchaseType) Valid() bool {
	switch t {
	case PurchaseLooseBeads, PurchaseBracelet, PurchaseAccessories, PurchaseFinishedMaterial:
		return true
	}
	return false
}

type PurchaseStatus string

const (
	PurchaseActive PurchaseStatus = "ACTIVE"
	PurchaseUsed   PurchaseStatus = "USED"
)

// Purchase is the immutable record of a supplier acquisition. Exactly one
// Material is derived from each Purchase at creation time; quantity/price
// fields never change after that, while the descriptive fields (name,
// quality, notes, min-stock alert) may be edited and are propagated to the
// Material in the same transaction.
type Purchase struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseCode string       `gorm:"uniqueIndex;not null"`
	PurchaseName string       `gorm:"index;not null"`
	PurchaseType PurchaseType `gorm:"type:varchar(20);index;not null"`
	Quality      *string      `gorm:"type:varchar(10)"`
	// BeadDiameter in mm — set for LOOSE_BEADS and BRACELET
	BeadDiameter *decimal.Decimal `gorm:"type:decimal(10,1)"`
	// Specification in mm — set for ACCESSORIES and FINISHED_MATERIAL
	Specification *decimal.Decimal `gorm:"type:decimal(10,1)"`
	PieceCount    *int
	TotalBeads    *int
	// Weight in grams
	Weight        *decimal.Decimal `gorm:"type:decimal(10,1)"`
	TotalPrice    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Status        PurchaseStatus   `gorm:"type:varchar(10);not null;default:'ACTIVE'"`
	SupplierName  *string
	MinStockAlert *int
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Material *Material `gorm:"foreignKey:PurchaseID"`
}
