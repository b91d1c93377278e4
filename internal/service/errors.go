package service

import (
	"fmt"

	"github.com/google/uuid"
)

// The engine rejects invalid operations instead of patching inconsistencies
// after the fact. All four error kinds surface to the caller as refused
// operations with no partial writes; none are retried internally.

// InsufficientStockError means an allocation would drive a material's
// remaining quantity negative. Raised before any write.
type InsufficientStockError struct {
	MaterialID uuid.UUID
	Requested  int
	Remaining  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock on material %s: requested %d, remaining %d",
		e.MaterialID, e.Requested, e.Remaining)
}

// MissingMaterialError means an ACTIVE purchase has no corresponding material.
// This is a data-integrity fault that requires manual reconciliation; the
// engine never auto-creates the missing record.
type MissingMaterialError struct {
	PurchaseID uuid.UUID
}

func (e *MissingMaterialError) Error() string {
	return fmt.Sprintf("no material exists for active purchase %s", e.PurchaseID)
}

// LedgerMismatchError means a SKU's inventory log disagrees with its stored
// available quantity. The offending operation is refused rather than letting
// it silently overwrite either side.
type LedgerMismatchError struct {
	SkuID     uuid.UUID
	LedgerQty int
	StoredQty int
}

func (e *LedgerMismatchError) Error() string {
	return fmt.Sprintf("inventory log for sku %s sums to %d but stored available_quantity is %d",
		e.SkuID, e.LedgerQty, e.StoredQty)
}

// InvalidCompositionError means a composition request references a material
// with no remaining stock, an unsupported purchase type, or is otherwise
// malformed at the domain level.
type InvalidCompositionError struct {
	Reason string
}

func (e *InvalidCompositionError) Error() string {
	return "invalid composition: " + e.Reason
}
