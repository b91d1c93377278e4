package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crystalerp/internal/dto"
	"crystalerp/internal/model"
	"crystalerp/internal/repository"
	"crystalerp/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkuService owns SKU composition and the per-SKU inventory ledger. Every
// stock-changing operation runs in one transaction: the SKU row, its
// constituent material allocations, and the appended log entry commit
// together or not at all.
type SkuService interface {
	Compose(ctx context.Context, operatorID uuid.UUID, req dto.ComposeSkuRequest) (*dto.SkuResponse, error)
	Adjust(ctx context.Context, operatorID, skuID uuid.UUID, req dto.AdjustSkuRequest) (*dto.SkuResponse, error)
	Destroy(ctx context.Context, operatorID, skuID uuid.UUID, req dto.DestroySkuRequest) (*dto.SkuResponse, error)
	RecordSale(ctx context.Context, operatorID, skuID uuid.UUID, quantity int) (*dto.SkuResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SkuResponse, error)
	List(ctx context.Context, filter dto.SkuListFilter) (*dto.SkuListResponse, error)
	ListLogs(ctx context.Context, skuID uuid.UUID) ([]dto.InventoryLogResponse, error)
	ListUsages(ctx context.Context, skuID uuid.UUID) ([]dto.UsageResponse, error)
}

type skuService struct {
	skus       repository.SkuRepository
	logs       repository.InventoryLogRepository
	usages     repository.UsageRepository
	materials  repository.MaterialRepository
	allocator  Allocator
	dispatcher *worker.Dispatcher
}

func NewSkuService(
	skus repository.SkuRepository,
	logs repository.InventoryLogRepository,
	usages repository.UsageRepository,
	materials repository.MaterialRepository,
	allocator Allocator,
	dispatcher *worker.Dispatcher,
) SkuService {
	return &skuService{
		skus:       skus,
		logs:       logs,
		usages:     usages,
		materials:  materials,
		allocator:  allocator,
		dispatcher: dispatcher,
	}
}

// resolvedConstituent is a pre-flight-validated recipe line.
type resolvedConstituent struct {
	material    *model.Material
	quantityPer int
}

// ── Compose ──────────────────────────────────────────────────────────────────
// Creating a SKU:
//   1. Resolve each constituent material from its purchase (pre-flight, outside TX)
//   2. Compute per-unit material/total cost and profit margin
//   3. BEGIN TX: create SKU + recipe, debit each material, append CREATE log entry
//   4. COMMIT
//   5. (async) enqueue low-stock alerts for any material now at its threshold

func (s *skuService) Compose(ctx context.Context, operatorID uuid.UUID, req dto.ComposeSkuRequest) (*dto.SkuResponse, error) {
	if req.Quantity < 1 {
		return nil, &InvalidCompositionError{Reason: "quantity must be at least 1"}
	}
	if len(req.Materials) == 0 {
		return nil, &InvalidCompositionError{Reason: "at least one constituent material is required"}
	}

	resolved, err := s.resolveConstituents(ctx, req.Materials)
	if err != nil {
		return nil, err
	}

	mode := model.ModeCombination
	if len(resolved) == 1 {
		mode = model.ModeDirect
	}

	lines := make([]CostLine, 0, len(resolved))
	for _, r := range resolved {
		lines = append(lines, CostLine{Quantity: r.quantityPer, UnitCost: r.material.UnitCost})
	}
	materialCost := MaterialCost(lines)
	totalCost := TotalCost(materialCost, req.LaborCost, req.CraftCost)

	code := req.SkuCode
	if code == "" {
		code = generateSkuCode()
	}

	sku := model.ProductSku{
		SkuCode:           code,
		SkuName:           req.SkuName,
		Specification:     req.Specification,
		CompositionMode:   mode,
		TotalQuantity:     req.Quantity,
		AvailableQuantity: req.Quantity,
		MaterialCost:      materialCost,
		LaborCost:         req.LaborCost,
		CraftCost:         req.CraftCost,
		TotalCost:         totalCost,
		SellingPrice:      req.SellingPrice,
		ProfitMargin:      ProfitMargin(req.SellingPrice, totalCost),
		Notes:             req.Notes,
	}

	txErr := runTx(ctx, s.skus.DB(), func(tx *gorm.DB) error {
		if err := s.skus.CreateTx(tx, &sku); err != nil {
			return err
		}

		recipe := make([]model.SkuRecipeItem, 0, len(resolved))
		for _, r := range resolved {
			recipe = append(recipe, model.SkuRecipeItem{
				SkuID:           sku.ID,
				MaterialID:      r.material.ID,
				QuantityPerUnit: r.quantityPer,
				UnitCost:        r.material.UnitCost,
			})
		}
		if err := s.skus.CreateRecipeItemsTx(tx, recipe); err != nil {
			return err
		}

		for _, r := range resolved {
			if _, err := s.allocator.AllocateTx(tx, r.material.ID, sku.ID,
				r.quantityPer*req.Quantity, r.material.UnitCost, nil); err != nil {
				return fmt.Errorf("allocating %s: %w", r.material.MaterialName, err)
			}
		}

		return s.logs.CreateTx(tx, &model.SkuInventoryLog{
			SkuID:          sku.ID,
			Action:         model.LogCreate,
			QuantityChange: req.Quantity,
			QuantityBefore: 0,
			QuantityAfter:  req.Quantity,
			OperatorID:     &operatorID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifyLowStock(ctx, resolved)

	resp := skuToResponse(&sku)
	for _, r := range resolved {
		resp.Recipe = append(resp.Recipe, dto.RecipeItemResponse{
			MaterialID:      r.material.ID.String(),
			MaterialName:    r.material.MaterialName,
			QuantityPerUnit: r.quantityPer,
			UnitCost:        r.material.UnitCost,
		})
	}
	return resp, nil
}

// resolveConstituents maps composition request lines to materials and their
// per-unit consumption, rejecting unusable constituents before any write.
func (s *skuService) resolveConstituents(ctx context.Context, reqs []dto.ConstituentRequest) ([]resolvedConstituent, error) {
	seen := make(map[uuid.UUID]bool, len(reqs))
	resolved := make([]resolvedConstituent, 0, len(reqs))

	for _, cr := range reqs {
		purchaseID, err := uuid.Parse(cr.PurchaseID)
		if err != nil {
			return nil, &InvalidCompositionError{Reason: fmt.Sprintf("invalid purchase_id %q", cr.PurchaseID)}
		}
		m, err := s.materials.FindByPurchaseID(ctx, purchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &MissingMaterialError{PurchaseID: purchaseID}
			}
			return nil, err
		}
		if !m.MaterialType.Valid() {
			return nil, &InvalidCompositionError{Reason: fmt.Sprintf("material %s has unsupported type %q", m.MaterialName, m.MaterialType)}
		}
		if m.RemainingQuantity <= 0 {
			return nil, &InvalidCompositionError{Reason: fmt.Sprintf("material %s has no remaining stock", m.MaterialName)}
		}
		if seen[m.ID] {
			return nil, &InvalidCompositionError{Reason: fmt.Sprintf("material %s listed twice", m.MaterialName)}
		}
		seen[m.ID] = true

		// Bead-counted materials consume beads; the rest consume pieces.
		qty := cr.QuantityUsedPieces
		if m.MaterialType == model.PurchaseLooseBeads || m.MaterialType == model.PurchaseBracelet {
			qty = cr.QuantityUsedBeads
		}
		if qty < 1 {
			return nil, &InvalidCompositionError{Reason: fmt.Sprintf("material %s has no per-unit consumption quantity", m.MaterialName)}
		}

		resolved = append(resolved, resolvedConstituent{material: m, quantityPer: qty})
	}
	return resolved, nil
}

// ── Adjust ───────────────────────────────────────────────────────────────────

func (s *skuService) Adjust(ctx context.Context, operatorID, skuID uuid.UUID, req dto.AdjustSkuRequest) (*dto.SkuResponse, error) {
	if req.QuantityChange == 0 {
		return nil, errors.New("quantity_change must be non-zero")
	}

	var sku *model.ProductSku
	txErr := runTx(ctx, s.skus.DB(), func(tx *gorm.DB) error {
		var err error
		sku, err = s.skus.FindByIDForUpdateTx(tx, skuID)
		if err != nil {
			return err
		}
		if err := s.verifyLedgerHeadTx(tx, sku); err != nil {
			return err
		}

		newAvailable := sku.AvailableQuantity + req.QuantityChange
		if newAvailable < 0 {
			return fmt.Errorf("adjustment of %d would drive available quantity below zero (currently %d)",
				req.QuantityChange, sku.AvailableQuantity)
		}

		recipe, err := s.skus.FindRecipeTx(tx, skuID)
		if err != nil {
			return err
		}
		// Restock debits materials per the recipe; downward correction
		// credits them back. Both reuse the recipe fixed at creation.
		for _, item := range recipe {
			if _, err := s.allocator.AllocateTx(tx, item.MaterialID, skuID,
				item.QuantityPerUnit*req.QuantityChange, item.UnitCost, nil); err != nil {
				return err
			}
		}

		if err := s.skus.UpdateQuantitiesTx(tx, skuID,
			sku.TotalQuantity+req.QuantityChange, newAvailable); err != nil {
			return err
		}

		entry := &model.SkuInventoryLog{
			SkuID:          skuID,
			Action:         model.LogAdjust,
			QuantityChange: req.QuantityChange,
			QuantityBefore: sku.AvailableQuantity,
			QuantityAfter:  newAvailable,
			Reason:         &req.Reason,
			OperatorID:     &operatorID,
		}
		if err := s.logs.CreateTx(tx, entry); err != nil {
			return err
		}
		sku.TotalQuantity += req.QuantityChange
		sku.AvailableQuantity = newAvailable
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if req.QuantityChange > 0 {
		s.notifyLowStockByRecipe(ctx, skuID)
	}
	return skuToResponse(sku), nil
}

// ── Destroy ──────────────────────────────────────────────────────────────────

func (s *skuService) Destroy(ctx context.Context, operatorID, skuID uuid.UUID, req dto.DestroySkuRequest) (*dto.SkuResponse, error) {
	if req.Quantity < 1 {
		return nil, errors.New("destroy quantity must be at least 1")
	}

	var sku *model.ProductSku
	txErr := runTx(ctx, s.skus.DB(), func(tx *gorm.DB) error {
		var err error
		sku, err = s.skus.FindByIDForUpdateTx(tx, skuID)
		if err != nil {
			return err
		}
		if err := s.verifyLedgerHeadTx(tx, sku); err != nil {
			return err
		}
		if req.Quantity > sku.AvailableQuantity {
			return fmt.Errorf("cannot destroy %d units: only %d available", req.Quantity, sku.AvailableQuantity)
		}

		// Compensating negative usage rows restore the constituent
		// materials — unless the units are gone for good (gift, damage).
		if req.ReturnToStock {
			recipe, err := s.skus.FindRecipeTx(tx, skuID)
			if err != nil {
				return err
			}
			note := fmt.Sprintf("destroy %s: %s", sku.SkuCode, req.Reason)
			for _, item := range recipe {
				if _, err := s.allocator.AllocateTx(tx, item.MaterialID, skuID,
					-(item.QuantityPerUnit * req.Quantity), item.UnitCost, &note); err != nil {
					return err
				}
			}
		}

		newAvailable := sku.AvailableQuantity - req.Quantity
		if err := s.skus.UpdateQuantitiesTx(tx, skuID,
			sku.TotalQuantity-req.Quantity, newAvailable); err != nil {
			return err
		}

		entry := &model.SkuInventoryLog{
			SkuID:          skuID,
			Action:         model.LogDestroy,
			QuantityChange: -req.Quantity,
			QuantityBefore: sku.AvailableQuantity,
			QuantityAfter:  newAvailable,
			Reason:         &req.Reason,
			OperatorID:     &operatorID,
		}
		if err := s.logs.CreateTx(tx, entry); err != nil {
			return err
		}
		sku.TotalQuantity -= req.Quantity
		sku.AvailableQuantity = newAvailable
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return skuToResponse(sku), nil
}

// ── RecordSale ───────────────────────────────────────────────────────────────
// An external sale reduces availability without touching materials: the units
// still exist, they just left the warehouse.

func (s *skuService) RecordSale(ctx context.Context, operatorID, skuID uuid.UUID, quantity int) (*dto.SkuResponse, error) {
	if quantity < 1 {
		return nil, errors.New("sale quantity must be at least 1")
	}

	var sku *model.ProductSku
	txErr := runTx(ctx, s.skus.DB(), func(tx *gorm.DB) error {
		var err error
		sku, err = s.skus.FindByIDForUpdateTx(tx, skuID)
		if err != nil {
			return err
		}
		if err := s.verifyLedgerHeadTx(tx, sku); err != nil {
			return err
		}
		if quantity > sku.AvailableQuantity {
			return fmt.Errorf("cannot sell %d units: only %d available", quantity, sku.AvailableQuantity)
		}

		newAvailable := sku.AvailableQuantity - quantity
		if err := s.skus.UpdateQuantitiesTx(tx, skuID, sku.TotalQuantity, newAvailable); err != nil {
			return err
		}

		reason := "external sale"
		entry := &model.SkuInventoryLog{
			SkuID:          skuID,
			Action:         model.LogAdjust,
			QuantityChange: -quantity,
			QuantityBefore: sku.AvailableQuantity,
			QuantityAfter:  newAvailable,
			Reason:         &reason,
			OperatorID:     &operatorID,
		}
		if err := s.logs.CreateTx(tx, entry); err != nil {
			return err
		}
		sku.AvailableQuantity = newAvailable
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return skuToResponse(sku), nil
}

// verifyLedgerHeadTx refuses any transition when the log head disagrees with
// the stored available quantity. A mismatch is a fatal consistency fault the
// engine never papers over.
func (s *skuService) verifyLedgerHeadTx(tx *gorm.DB, sku *model.ProductSku) error {
	last, err := s.logs.LastBySkuTx(tx, sku.ID)
	if err != nil {
		return err
	}
	ledgerQty := 0
	if last != nil {
		if last.QuantityAfter != last.QuantityBefore+last.QuantityChange {
			return &LedgerMismatchError{SkuID: sku.ID, LedgerQty: last.QuantityAfter, StoredQty: sku.AvailableQuantity}
		}
		ledgerQty = last.QuantityAfter
	}
	if ledgerQty != sku.AvailableQuantity {
		return &LedgerMismatchError{SkuID: sku.ID, LedgerQty: ledgerQty, StoredQty: sku.AvailableQuantity}
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *skuService) Get(ctx context.Context, id uuid.UUID) (*dto.SkuResponse, error) {
	sku, err := s.skus.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := skuToResponse(sku)
	for _, item := range sku.Recipe {
		name := ""
		if item.Material != nil {
			name = item.Material.MaterialName
		}
		resp.Recipe = append(resp.Recipe, dto.RecipeItemResponse{
			MaterialID:      item.MaterialID.String(),
			MaterialName:    name,
			QuantityPerUnit: item.QuantityPerUnit,
			UnitCost:        item.UnitCost,
		})
	}
	return resp, nil
}

func (s *skuService) List(ctx context.Context, filter dto.SkuListFilter) (*dto.SkuListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	skus, total, err := s.skus.List(ctx, repository.SkuFilter{
		Name:        filter.Name,
		Code:        filter.Code,
		InStockOnly: filter.InStockOnly,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SkuResponse, 0, len(skus))
	for i := range skus {
		items = append(items, *skuToResponse(&skus[i]))
	}
	return &dto.SkuListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *skuService) ListLogs(ctx context.Context, skuID uuid.UUID) ([]dto.InventoryLogResponse, error) {
	entries, err := s.logs.ListBySku(ctx, skuID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.InventoryLogResponse, 0, len(entries))
	for _, e := range entries {
		var operatorID *string
		if e.OperatorID != nil {
			id := e.OperatorID.String()
			operatorID = &id
		}
		resp = append(resp, dto.InventoryLogResponse{
			ID:             e.ID,
			SkuID:          e.SkuID.String(),
			Action:         string(e.Action),
			QuantityChange: e.QuantityChange,
			QuantityBefore: e.QuantityBefore,
			QuantityAfter:  e.QuantityAfter,
			Reason:         e.Reason,
			OperatorID:     operatorID,
			CreatedAt:      e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return resp, nil
}

func (s *skuService) ListUsages(ctx context.Context, skuID uuid.UUID) ([]dto.UsageResponse, error) {
	usages, err := s.usages.ListBySku(ctx, skuID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsageResponse, 0, len(usages))
	for _, u := range usages {
		name := ""
		if u.Material != nil {
			name = u.Material.MaterialName
		}
		resp = append(resp, dto.UsageResponse{
			ID:           u.ID,
			MaterialID:   u.MaterialID.String(),
			MaterialName: name,
			SkuID:        u.SkuID.String(),
			QuantityUsed: u.QuantityUsed,
			UnitCost:     u.UnitCost,
			TotalCost:    u.TotalCost,
			Notes:        u.Notes,
			CreatedAt:    u.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return resp, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// notifyLowStock enqueues alert jobs for constituents now at or below their
// min-stock threshold. Best-effort — fire & forget.
func (s *skuService) notifyLowStock(ctx context.Context, resolved []resolvedConstituent) {
	if s.dispatcher == nil {
		return
	}
	for _, r := range resolved {
		m, err := s.materials.FindByID(ctx, r.material.ID)
		if err != nil || m.MinStockAlert == nil || m.RemainingQuantity > *m.MinStockAlert {
			continue
		}
		_ = s.dispatcher.EnqueueStockAlert(ctx, worker.StockAlertPayload{
			MaterialID:   m.ID.String(),
			MaterialName: m.MaterialName,
			Remaining:    m.RemainingQuantity,
			Threshold:    *m.MinStockAlert,
			Unit:         string(m.InventoryUnit),
		})
	}
}

func (s *skuService) notifyLowStockByRecipe(ctx context.Context, skuID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	recipe, err := s.skus.FindRecipe(ctx, skuID)
	if err != nil {
		return
	}
	resolved := make([]resolvedConstituent, 0, len(recipe))
	for _, item := range recipe {
		resolved = append(resolved, resolvedConstituent{material: &model.Material{ID: item.MaterialID}})
	}
	s.notifyLowStock(ctx, resolved)
}

func generateSkuCode() string {
	return "SKU-" + strings.ToUpper(uuid.New().String()[:8])
}

func skuToResponse(sku *model.ProductSku) *dto.SkuResponse {
	return &dto.SkuResponse{
		ID:                sku.ID.String(),
		SkuCode:           sku.SkuCode,
		SkuName:           sku.SkuName,
		Specification:     sku.Specification,
		CompositionMode:   string(sku.CompositionMode),
		TotalQuantity:     sku.TotalQuantity,
		AvailableQuantity: sku.AvailableQuantity,
		MaterialCost:      sku.MaterialCost,
		LaborCost:         sku.LaborCost,
		CraftCost:         sku.CraftCost,
		TotalCost:         sku.TotalCost,
		SellingPrice:      sku.SellingPrice,
		ProfitMargin:      sku.ProfitMargin,
		Notes:             sku.Notes,
		CreatedAt:         sku.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
