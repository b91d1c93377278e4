package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryUnit is the counting unit a material's stock is tracked in.
type InventoryUnit string

const (
	UnitPieces InventoryUnit = "PIECES"
	UnitSlices InventoryUnit = "SLICES"
	UnitItems  InventoryUnit = "ITEMS"
)

// Material is the trackable stock unit derived 1:1 from a Purchase.
//
// UsedQuantity is never incremented in place: it is recomputed as the signed
// sum of all MaterialUsage rows inside the same transaction that appends a
// row, and RemainingQuantity = OriginalQuantity - UsedQuantity always holds.
type Material struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseID        uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null"`
	MaterialName      string           `gorm:"index;not null"`
	MaterialType      PurchaseType     `gorm:"type:varchar(20);index;not null"`
	Quality           *string          `gorm:"type:varchar(10)"`
	BeadDiameter      *decimal.Decimal `gorm:"type:decimal(10,1)"`
	Specification     *decimal.Decimal `gorm:"type:decimal(10,1)"`
	OriginalQuantity  int              `gorm:"not null"`
	UsedQuantity      int              `gorm:"not null;default:0"`
	RemainingQuantity int              `gorm:"not null;default:0"`
	InventoryUnit     InventoryUnit    `gorm:"type:varchar(10);not null"`
	UnitCost          decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	MinStockAlert     *int
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Purchase *Purchase `gorm:"foreignKey:PurchaseID"`
}
