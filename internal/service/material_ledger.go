package service

import (
	"errors"
	"fmt"

	"crystalerp/internal/model"
	"crystalerp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterialLedger derives the tracked stock record from a purchase and keeps
// the two synchronized. The derivation rules used to live in database
// triggers; here they are plain functions invoked inside the same transaction
// that writes the purchase, so there is never a window where purchase and
// material disagree.
type MaterialLedger interface {
	MaterializePurchaseTx(tx *gorm.DB, p *model.Purchase) (*model.Material, error)
	SyncPurchaseEditTx(tx *gorm.DB, p *model.Purchase) (*model.Material, error)
}

type materialLedger struct {
	materials repository.MaterialRepository
}

func NewMaterialLedger(materials repository.MaterialRepository) MaterialLedger {
	return &materialLedger{materials: materials}
}

// densityFactor maps bead diameter (mm) to the grams→pieces multiplier.
func densityFactor(diameter *decimal.Decimal) int64 {
	if diameter == nil {
		return 5
	}
	if !diameter.IsInteger() {
		return 5
	}
	switch diameter.IntPart() {
	case 4:
		return 25
	case 6:
		return 11
	case 8:
		return 6
	case 10:
		return 4
	case 12:
		return 3
	default:
		return 5
	}
}

// DeriveQuantity computes a purchase's original stock quantity. Per purchase
// type the first usable source wins; results are floored and never below 1.
//
//	LOOSE_BEADS:  piece_count → floor(weight × density(diameter)) → 1
//	BRACELET:     total_beads → piece_count → floor(weight × density) → 1
//	ACCESSORIES / FINISHED_MATERIAL: piece_count → 1
func DeriveQuantity(p *model.Purchase) int {
	qty := 0
	switch p.PurchaseType {
	case model.PurchaseLooseBeads:
		if p.PieceCount != nil && *p.PieceCount > 0 {
			qty = *p.PieceCount
		} else if p.Weight != nil && p.Weight.IsPositive() {
			qty = int(p.Weight.Mul(decimal.NewFromInt(densityFactor(p.BeadDiameter))).IntPart())
		}
	case model.PurchaseBracelet:
		if p.TotalBeads != nil && *p.TotalBeads > 0 {
			qty = *p.TotalBeads
		} else if p.PieceCount != nil && *p.PieceCount > 0 {
			qty = *p.PieceCount
		} else if p.Weight != nil && p.Weight.IsPositive() {
			qty = int(p.Weight.Mul(decimal.NewFromInt(densityFactor(p.BeadDiameter))).IntPart())
		}
	case model.PurchaseAccessories, model.PurchaseFinishedMaterial:
		if p.PieceCount != nil && *p.PieceCount > 0 {
			qty = *p.PieceCount
		}
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}

// InventoryUnitFor maps a purchase type to the unit its stock is counted in.
func InventoryUnitFor(t model.PurchaseType) model.InventoryUnit {
	switch t {
	case model.PurchaseAccessories:
		return model.UnitSlices
	case model.PurchaseFinishedMaterial:
		return model.UnitItems
	default:
		return model.UnitPieces
	}
}

func (l *materialLedger) MaterializePurchaseTx(tx *gorm.DB, p *model.Purchase) (*model.Material, error) {
	if !p.PurchaseType.Valid() {
		return nil, &InvalidCompositionError{Reason: fmt.Sprintf("unsupported purchase type %q", p.PurchaseType)}
	}

	qty := DeriveQuantity(p)
	m := &model.Material{
		PurchaseID:        p.ID,
		MaterialName:      p.PurchaseName,
		MaterialType:      p.PurchaseType,
		Quality:           p.Quality,
		BeadDiameter:      p.BeadDiameter,
		Specification:     p.Specification,
		OriginalQuantity:  qty,
		UsedQuantity:      0,
		RemainingQuantity: qty,
		InventoryUnit:     InventoryUnitFor(p.PurchaseType),
		UnitCost:          UnitCost(p.TotalPrice, qty),
		MinStockAlert:     p.MinStockAlert,
		Notes:             p.Notes,
	}
	if err := l.materials.CreateTx(tx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SyncPurchaseEditTx propagates an edited purchase's fields to its material
// in the same transaction. Quantity and unit cost are re-derived; if stock
// has already been consumed, the new original quantity may not fall below
// the consumed amount.
func (l *materialLedger) SyncPurchaseEditTx(tx *gorm.DB, p *model.Purchase) (*model.Material, error) {
	m, err := l.materials.FindByPurchaseIDForUpdateTx(tx, p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &MissingMaterialError{PurchaseID: p.ID}
		}
		return nil, err
	}

	m.MaterialName = p.PurchaseName
	m.Quality = p.Quality
	m.BeadDiameter = p.BeadDiameter
	m.Specification = p.Specification
	m.MinStockAlert = p.MinStockAlert
	m.Notes = p.Notes

	qty := DeriveQuantity(p)
	if qty < m.UsedQuantity {
		return nil, fmt.Errorf("purchase edit would reduce original quantity to %d, below the %d already consumed",
			qty, m.UsedQuantity)
	}
	m.OriginalQuantity = qty
	m.RemainingQuantity = qty - m.UsedQuantity
	m.UnitCost = UnitCost(p.TotalPrice, qty)

	if err := l.materials.SaveTx(tx, m); err != nil {
		return nil, err
	}
	return m, nil
}
