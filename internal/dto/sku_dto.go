package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ConstituentRequest names one material (by its source purchase) and its
// per-unit consumption. Bead-counted materials (LOOSE_BEADS, BRACELET) use
// quantity_used_beads; piece-counted ones use quantity_used_pieces.
type ConstituentRequest struct {
	PurchaseID         string `json:"purchase_id"          validate:"required,uuid"`
	QuantityUsedBeads  int    `json:"quantity_used_beads"  validate:"min=0"`
	QuantityUsedPieces int    `json:"quantity_used_pieces" validate:"min=0"`
}

type ComposeSkuRequest struct {
	SkuCode       string               `json:"sku_code"      validate:"omitempty,max=40"`
	SkuName       string               `json:"sku_name"      validate:"required,min=1,max=120"`
	Specification *string              `json:"specification" validate:"omitempty,max=50"`
	Quantity      int                  `json:"quantity"      validate:"required,min=1"`
	Materials     []ConstituentRequest `json:"materials"     validate:"required,min=1,dive"`
	LaborCost     decimal.Decimal      `json:"labor_cost"`
	CraftCost     decimal.Decimal      `json:"craft_cost"`
	SellingPrice  decimal.Decimal      `json:"selling_price" validate:"required"`
	Notes         *string              `json:"notes"`
}

type AdjustSkuRequest struct {
	// QuantityChange is signed: positive restocks (debiting materials per the
	// recipe), negative corrects produced count downward (crediting them).
	QuantityChange int    `json:"quantity_change" validate:"required"`
	Reason         string `json:"reason"          validate:"required,min=1,max=200"`
}

type DestroySkuRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
	// ReturnToStock states explicitly whether the constituent materials go
	// back into stock (false for gifts / units that cannot be reworked).
	ReturnToStock bool   `json:"return_to_stock"`
	Reason        string `json:"reason" validate:"required,min=1,max=200"`
}

type SellSkuRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type SkuListFilter struct {
	Name        string `form:"name"`
	Code        string `form:"code"`
	InStockOnly bool   `form:"in_stock_only"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RecipeItemResponse struct {
	MaterialID      string          `json:"material_id"`
	MaterialName    string          `json:"material_name,omitempty"`
	QuantityPerUnit int             `json:"quantity_per_unit"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

type SkuResponse struct {
	ID                string               `json:"id"`
	SkuCode           string               `json:"sku_code"`
	SkuName           string               `json:"sku_name"`
	Specification     *string              `json:"specification"`
	CompositionMode   string               `json:"composition_mode"`
	TotalQuantity     int                  `json:"total_quantity"`
	AvailableQuantity int                  `json:"available_quantity"`
	MaterialCost      decimal.Decimal      `json:"material_cost"`
	LaborCost         decimal.Decimal      `json:"labor_cost"`
	CraftCost         decimal.Decimal      `json:"craft_cost"`
	TotalCost         decimal.Decimal      `json:"total_cost"`
	SellingPrice      decimal.Decimal      `json:"selling_price"`
	ProfitMargin      decimal.Decimal      `json:"profit_margin"`
	Recipe            []RecipeItemResponse `json:"recipe,omitempty"`
	Notes             *string              `json:"notes"`
	CreatedAt         string               `json:"created_at"`
}

type SkuListResponse struct {
	Data  []SkuResponse `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type InventoryLogResponse struct {
	ID             int64   `json:"id"`
	SkuID          string  `json:"sku_id"`
	Action         string  `json:"action"`
	QuantityChange int     `json:"quantity_change"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	Reason         *string `json:"reason"`
	OperatorID     *string `json:"operator_id"`
	CreatedAt      string  `json:"created_at"`
}
