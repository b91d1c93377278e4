package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialUsage is one signed ledger row debiting (positive quantity) or
// crediting (negative quantity) a Material against a finished-good SKU.
// Rows are append-only: destroy/refund flows add compensating negative rows
// instead of mutating history. The bigserial primary key gives the ledger a
// total order without relying on timestamps.
type MaterialUsage struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	SkuID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	QuantityUsed int             `gorm:"not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes        *string
	CreatedAt    time.Time

	Material *Material   `gorm:"foreignKey:MaterialID"`
	Sku      *ProductSku `gorm:"foreignKey:SkuID"`
}

// TableName overrides GORM's default pluralization (material_usages → material_usage).
func (MaterialUsage) TableName() string { return "material_usage" }
