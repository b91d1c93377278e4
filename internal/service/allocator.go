package service

import (
	"errors"

	"crystalerp/internal/model"
	"crystalerp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocator debits or credits a material's stock against a finished-good SKU.
// Every call appends exactly one signed MaterialUsage row and then recomputes
// used_quantity as the sum over the material's full usage history inside the
// same transaction — the stored counters are views over the append-only
// ledger, not independently mutated state.
type Allocator interface {
	// AllocateTx applies a signed quantity delta (positive = consumption,
	// negative = return to stock) and must be called inside the compound
	// operation's transaction.
	AllocateTx(tx *gorm.DB, materialID, skuID uuid.UUID, quantity int, unitCost decimal.Decimal, notes *string) (*model.MaterialUsage, error)
}

type allocator struct {
	materials repository.MaterialRepository
	usages    repository.UsageRepository
	purchases repository.PurchaseRepository
}

func NewAllocator(
	materials repository.MaterialRepository,
	usages repository.UsageRepository,
	purchases repository.PurchaseRepository,
) Allocator {
	return &allocator{materials: materials, usages: usages, purchases: purchases}
}

var errZeroAllocation = errors.New("allocation quantity must be non-zero")

func (a *allocator) AllocateTx(tx *gorm.DB, materialID, skuID uuid.UUID, quantity int, unitCost decimal.Decimal, notes *string) (*model.MaterialUsage, error) {
	if quantity == 0 {
		return nil, errZeroAllocation
	}

	// Row lock serializes concurrent allocations on the same material so two
	// requests can never both pass the stock check on a stale read.
	m, err := a.materials.FindByIDForUpdateTx(tx, materialID)
	if err != nil {
		return nil, err
	}

	if quantity > 0 && m.RemainingQuantity-quantity < 0 {
		return nil, &InsufficientStockError{
			MaterialID: materialID,
			Requested:  quantity,
			Remaining:  m.RemainingQuantity,
		}
	}

	usage := &model.MaterialUsage{
		MaterialID:   materialID,
		SkuID:        skuID,
		QuantityUsed: quantity,
		UnitCost:     unitCost,
		TotalCost:    unitCost.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		Notes:        notes,
	}
	if err := a.usages.CreateTx(tx, usage); err != nil {
		return nil, err
	}

	// Recompute from the full history rather than incrementing the counter.
	used, err := a.usages.SumQuantityByMaterialTx(tx, materialID)
	if err != nil {
		return nil, err
	}
	if used < 0 {
		return nil, errors.New("usage history sums negative: more returned than consumed")
	}
	if used > m.OriginalQuantity {
		return nil, &InsufficientStockError{
			MaterialID: materialID,
			Requested:  quantity,
			Remaining:  m.OriginalQuantity - (used - quantity),
		}
	}

	if err := a.materials.UpdateQuantitiesTx(tx, materialID, used, m.OriginalQuantity-used); err != nil {
		return nil, err
	}

	// A purchase is USED once any of its stock has been allocated, and
	// reverts to ACTIVE when every allocation has been returned.
	status := model.PurchaseActive
	if used > 0 {
		status = model.PurchaseUsed
	}
	if err := a.purchases.UpdateStatusTx(tx, m.PurchaseID, status); err != nil {
		return nil, err
	}

	return usage, nil
}
