package model

import (
	"time"

	"github.com/google/uuid"
)

// SkuLogAction is the kind of stock event recorded in a SKU's inventory log.
type SkuLogAction string

const (
	LogCreate  SkuLogAction = "CREATE"
	LogAdjust  SkuLogAction = "ADJUST"
	LogDestroy SkuLogAction = "DESTROY"
)

// SkuInventoryLog is the append-only per-SKU stock ledger. Each entry must
// satisfy QuantityAfter = QuantityBefore + QuantityChange, and chaining the
// entries in ID order from zero reproduces the SKU's AvailableQuantity.
// The bigserial primary key totally orders entries written in separate
// transactions that may share a timestamp.
type SkuInventoryLog struct {
	ID             int64        `gorm:"primaryKey;autoIncrement"`
	SkuID          uuid.UUID    `gorm:"type:uuid;index;not null"`
	Action         SkuLogAction `gorm:"type:varchar(10);not null"`
	QuantityChange int          `gorm:"not null"`
	QuantityBefore int          `gorm:"not null"`
	QuantityAfter  int          `gorm:"not null"`
	Reason         *string
	OperatorID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Sku *ProductSku `gorm:"foreignKey:SkuID"`
}

// TableName overrides GORM's default pluralization.
func (SkuInventoryLog) TableName() string { return "sku_inventory_logs" }
