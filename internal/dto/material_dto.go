package dto

import "github.com/shopspring/decimal"

type MaterialFilter struct {
	MaterialType string `form:"material_type"`
	Quality      string `form:"quality"`
	Name         string `form:"name"`
	InStockOnly  bool   `form:"in_stock_only"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type MaterialResponse struct {
	ID                string           `json:"id"`
	PurchaseID        string           `json:"purchase_id"`
	MaterialName      string           `json:"material_name"`
	MaterialType      string           `json:"material_type"`
	Quality           *string          `json:"quality"`
	BeadDiameter      *decimal.Decimal `json:"bead_diameter"`
	Specification     *decimal.Decimal `json:"specification"`
	OriginalQuantity  int              `json:"original_quantity"`
	UsedQuantity      int              `json:"used_quantity"`
	RemainingQuantity int              `json:"remaining_quantity"`
	InventoryUnit     string           `json:"inventory_unit"`
	UnitCost          decimal.Decimal  `json:"unit_cost"`
	MinStockAlert     *int             `json:"min_stock_alert"`
	Notes             *string          `json:"notes"`
	CreatedAt         string           `json:"created_at"`
}

type MaterialListResponse struct {
	Data  []MaterialResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type UsageResponse struct {
	ID           int64           `json:"id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name,omitempty"`
	SkuID        string          `json:"sku_id"`
	QuantityUsed int             `json:"quantity_used"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Notes        *string         `json:"notes"`
	CreatedAt    string          `json:"created_at"`
}
