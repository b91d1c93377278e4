package service

import (
	"context"
	"fmt"

	"crystalerp/internal/model"
	"crystalerp/internal/repository"
)

// Finding is one detected inconsistency between stored quantities and what
// the append-only histories say they should be.
type Finding struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id"`
	Detail   string `json:"detail"`
}

// ReconcileReport summarizes a full integrity scan.
type ReconcileReport struct {
	MaterialsChecked int       `json:"materials_checked"`
	PurchasesChecked int       `json:"purchases_checked"`
	SkusChecked      int       `json:"skus_checked"`
	Findings         []Finding `json:"findings"`
}

func (r *ReconcileReport) Clean() bool { return len(r.Findings) == 0 }

// ReconcileService replays the usage history and SKU inventory logs against
// the stored quantities and reports every disagreement. It never repairs —
// the findings tell an operator exactly which row to look at.
type ReconcileService interface {
	Run(ctx context.Context) (*ReconcileReport, error)
}

type reconcileService struct {
	purchases repository.PurchaseRepository
	materials repository.MaterialRepository
	usages    repository.UsageRepository
	skus      repository.SkuRepository
	logs      repository.InventoryLogRepository
}

func NewReconcileService(
	purchases repository.PurchaseRepository,
	materials repository.MaterialRepository,
	usages repository.UsageRepository,
	skus repository.SkuRepository,
	logs repository.InventoryLogRepository,
) ReconcileService {
	return &reconcileService{
		purchases: purchases,
		materials: materials,
		usages:    usages,
		skus:      skus,
		logs:      logs,
	}
}

func (s *reconcileService) Run(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	if err := s.checkMaterials(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkPurchases(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkSkus(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// checkMaterials verifies, per material:
//
//	used_quantity      == SUM(usage history)
//	remaining_quantity == original_quantity - used_quantity
//	remaining_quantity >= 0
func (s *reconcileService) checkMaterials(ctx context.Context, report *ReconcileReport) error {
	materials, err := s.materials.ListAll(ctx)
	if err != nil {
		return err
	}
	report.MaterialsChecked = len(materials)

	for i := range materials {
		m := &materials[i]
		sum, err := s.usages.SumQuantityByMaterial(ctx, m.ID)
		if err != nil {
			return err
		}
		if m.UsedQuantity != sum {
			report.Findings = append(report.Findings, Finding{
				Kind:     "material_used_mismatch",
				EntityID: m.ID.String(),
				Detail:   fmt.Sprintf("used_quantity=%d but usage history sums to %d", m.UsedQuantity, sum),
			})
		}
		if m.RemainingQuantity != m.OriginalQuantity-m.UsedQuantity {
			report.Findings = append(report.Findings, Finding{
				Kind:     "material_remaining_mismatch",
				EntityID: m.ID.String(),
				Detail: fmt.Sprintf("remaining_quantity=%d but original-used=%d",
					m.RemainingQuantity, m.OriginalQuantity-m.UsedQuantity),
			})
		}
		if m.RemainingQuantity < 0 {
			report.Findings = append(report.Findings, Finding{
				Kind:     "material_negative_stock",
				EntityID: m.ID.String(),
				Detail:   fmt.Sprintf("remaining_quantity=%d", m.RemainingQuantity),
			})
		}
	}
	return nil
}

// checkPurchases verifies every purchase has its derived material and that
// the status flag agrees with consumption.
func (s *reconcileService) checkPurchases(ctx context.Context, report *ReconcileReport) error {
	purchases, err := s.purchases.ListAll(ctx)
	if err != nil {
		return err
	}
	report.PurchasesChecked = len(purchases)

	for i := range purchases {
		p := &purchases[i]
		m, err := s.materials.FindByPurchaseID(ctx, p.ID)
		if err != nil {
			report.Findings = append(report.Findings, Finding{
				Kind:     "purchase_missing_material",
				EntityID: p.ID.String(),
				Detail:   fmt.Sprintf("purchase %s has no derived material", p.PurchaseCode),
			})
			continue
		}
		wantStatus := model.PurchaseActive
		if m.UsedQuantity > 0 {
			wantStatus = model.PurchaseUsed
		}
		if p.Status != wantStatus {
			report.Findings = append(report.Findings, Finding{
				Kind:     "purchase_status_mismatch",
				EntityID: p.ID.String(),
				Detail:   fmt.Sprintf("status=%s but used_quantity=%d implies %s", p.Status, m.UsedQuantity, wantStatus),
			})
		}
	}
	return nil
}

// checkSkus replays each SKU's inventory log from zero and compares the
// result against available_quantity, also checking every entry's internal
// before+change==after arithmetic and chain continuity.
func (s *reconcileService) checkSkus(ctx context.Context, report *ReconcileReport) error {
	skus, err := s.skus.ListAll(ctx)
	if err != nil {
		return err
	}
	report.SkusChecked = len(skus)

	for i := range skus {
		sku := &skus[i]
		entries, err := s.logs.ListBySku(ctx, sku.ID)
		if err != nil {
			return err
		}

		replayed := 0
		broken := false
		for _, e := range entries {
			if e.QuantityBefore != replayed {
				report.Findings = append(report.Findings, Finding{
					Kind:     "sku_log_chain_break",
					EntityID: sku.ID.String(),
					Detail:   fmt.Sprintf("log #%d starts at %d, previous entry ended at %d", e.ID, e.QuantityBefore, replayed),
				})
				broken = true
				break
			}
			if e.QuantityAfter != e.QuantityBefore+e.QuantityChange {
				report.Findings = append(report.Findings, Finding{
					Kind:     "sku_log_arithmetic",
					EntityID: sku.ID.String(),
					Detail:   fmt.Sprintf("log #%d: %d%+d != %d", e.ID, e.QuantityBefore, e.QuantityChange, e.QuantityAfter),
				})
				broken = true
				break
			}
			replayed = e.QuantityAfter
		}
		if broken {
			continue
		}

		if replayed != sku.AvailableQuantity {
			report.Findings = append(report.Findings, Finding{
				Kind:     "sku_quantity_mismatch",
				EntityID: sku.ID.String(),
				Detail:   fmt.Sprintf("available_quantity=%d but log replays to %d", sku.AvailableQuantity, replayed),
			})
		}
	}
	return nil
}
