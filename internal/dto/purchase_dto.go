package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePurchaseRequest struct {
	PurchaseCode  string           `json:"purchase_code"  validate:"omitempty,max=40"`
	PurchaseName  string           `json:"purchase_name"  validate:"required,min=1,max=120"`
	PurchaseType  string           `json:"purchase_type"  validate:"required,oneof=LOOSE_BEADS BRACELET ACCESSORIES FINISHED_MATERIAL"`
	Quality       *string          `json:"quality"        validate:"omitempty,max=10"`
	BeadDiameter  *decimal.Decimal `json:"bead_diameter"`
	Specification *decimal.Decimal `json:"specification"`
	PieceCount    *int             `json:"piece_count"    validate:"omitempty,min=1"`
	TotalBeads    *int             `json:"total_beads"    validate:"omitempty,min=1"`
	Weight        *decimal.Decimal `json:"weight"`
	TotalPrice    decimal.Decimal  `json:"total_price"    validate:"required"`
	SupplierName  *string          `json:"supplier_name"`
	MinStockAlert *int             `json:"min_stock_alert" validate:"omitempty,min=0"`
	Notes         *string          `json:"notes"`
}

// UpdatePurchaseRequest covers the mutable purchase fields. Edits propagate
// to the derived material inside the same transaction.
type UpdatePurchaseRequest struct {
	PurchaseName  *string          `json:"purchase_name"  validate:"omitempty,min=1,max=120"`
	Quality       *string          `json:"quality"        validate:"omitempty,max=10"`
	BeadDiameter  *decimal.Decimal `json:"bead_diameter"`
	PieceCount    *int             `json:"piece_count"    validate:"omitempty,min=1"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	MinStockAlert *int             `json:"min_stock_alert" validate:"omitempty,min=0"`
	Notes         *string          `json:"notes"`
}

type PurchaseFilter struct {
	PurchaseType string `form:"purchase_type"`
	Status       string `form:"status"`
	Quality      string `form:"quality"`
	Name         string `form:"name"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PurchaseResponse struct {
	ID            string           `json:"id"`
	PurchaseCode  string           `json:"purchase_code"`
	PurchaseName  string           `json:"purchase_name"`
	PurchaseType  string           `json:"purchase_type"`
	Quality       *string          `json:"quality"`
	BeadDiameter  *decimal.Decimal `json:"bead_diameter"`
	Specification *decimal.Decimal `json:"specification"`
	PieceCount    *int             `json:"piece_count"`
	TotalBeads    *int             `json:"total_beads"`
	Weight        *decimal.Decimal `json:"weight"`
	TotalPrice    decimal.Decimal  `json:"total_price"`
	Status        string           `json:"status"`
	SupplierName  *string          `json:"supplier_name"`
	MinStockAlert *int             `json:"min_stock_alert"`
	Notes         *string          `json:"notes"`
	Material      *MaterialResponse `json:"material,omitempty"`
	CreatedAt     string           `json:"created_at"`
}

type PurchaseListResponse struct {
	Data  []PurchaseResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
