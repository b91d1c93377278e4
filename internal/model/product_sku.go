package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompositionMode records how a SKU was composed from materials.
type CompositionMode string

const (
	// ModeDirect — one material transformed 1:1 into the SKU.
	ModeDirect CompositionMode = "DIRECT"
	// ModeCombination — N materials combined per a fixed recipe.
	ModeCombination CompositionMode = "COMBINATION"
)

// ProductSku is a sellable finished good composed from one or more Materials.
// AvailableQuantity is authoritative only insofar as it agrees with the SKU's
// inventory log: every stock-changing operation first replays the log head and
// refuses to proceed on disagreement.
type ProductSku struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SkuCode           string          `gorm:"uniqueIndex;not null"`
	SkuName           string          `gorm:"index;not null"`
	Specification     *string         `gorm:"type:varchar(50)"`
	CompositionMode   CompositionMode `gorm:"type:varchar(15);not null"`
	TotalQuantity     int             `gorm:"not null;default:0"`
	AvailableQuantity int             `gorm:"not null;default:0"`
	MaterialCost      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LaborCost         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CraftCost         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ProfitMargin is a percentage relative to SellingPrice, never to TotalCost.
	ProfitMargin decimal.Decimal `gorm:"type:decimal(7,2);not null"`
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Recipe []SkuRecipeItem `gorm:"foreignKey:SkuID"`
}

// SkuRecipeItem fixes, at first creation, how many units of a material one
// unit of the SKU consumes. Restocks and destroys reuse the recipe so the
// material debits of an N-unit operation are always N x QuantityPerUnit.
type SkuRecipeItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SkuID           uuid.UUID       `gorm:"type:uuid;index:idx_sku_material,unique;not null"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;index:idx_sku_material,unique;not null"`
	QuantityPerUnit int             `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CreatedAt       time.Time

	Material *Material `gorm:"foreignKey:MaterialID"`
}
