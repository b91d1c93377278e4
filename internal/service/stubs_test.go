package service_test

import (
	"context"

	"crystalerp/internal/model"
	"crystalerp/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. Services detect the nil *gorm.DB returned by
// DB() and run their transaction bodies directly, so the full compound
// operations are exercised without postgres.

// ── Materials ────────────────────────────────────────────────────────────────

type stubMaterialRepo struct {
	materials map[uuid.UUID]*model.Material
}

func newStubMaterialRepo() *stubMaterialRepo {
	return &stubMaterialRepo{materials: make(map[uuid.UUID]*model.Material)}
}

func (r *stubMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMaterialRepo) FindByPurchaseID(_ context.Context, purchaseID uuid.UUID) (*model.Material, error) {
	for _, m := range r.materials {
		if m.PurchaseID == purchaseID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMaterialRepo) List(_ context.Context, _ repository.MaterialFilter) ([]model.Material, int64, error) {
	var result []model.Material
	for _, m := range r.materials {
		result = append(result, *m)
	}
	return result, int64(len(result)), nil
}

func (r *stubMaterialRepo) ListLowStock(_ context.Context) ([]model.Material, error) {
	var result []model.Material
	for _, m := range r.materials {
		if m.MinStockAlert != nil && m.RemainingQuantity <= *m.MinStockAlert {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *stubMaterialRepo) ListAll(_ context.Context) ([]model.Material, error) {
	var result []model.Material
	for _, m := range r.materials {
		result = append(result, *m)
	}
	return result, nil
}

func (r *stubMaterialRepo) CreateTx(_ *gorm.DB, m *model.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.materials[m.ID] = m
	return nil
}

func (r *stubMaterialRepo) SaveTx(_ *gorm.DB, m *model.Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *stubMaterialRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Material, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubMaterialRepo) FindByPurchaseIDForUpdateTx(_ *gorm.DB, purchaseID uuid.UUID) (*model.Material, error) {
	return r.FindByPurchaseID(context.Background(), purchaseID)
}

func (r *stubMaterialRepo) UpdateQuantitiesTx(_ *gorm.DB, id uuid.UUID, used, remaining int) error {
	m, ok := r.materials[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.UsedQuantity = used
	m.RemainingQuantity = remaining
	return nil
}

func (r *stubMaterialRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.materials, id)
	return nil
}

var _ repository.MaterialRepository = (*stubMaterialRepo)(nil)

// ── Usages ───────────────────────────────────────────────────────────────────

type stubUsageRepo struct {
	usages []*model.MaterialUsage
	nextID int64
}

func newStubUsageRepo() *stubUsageRepo { return &stubUsageRepo{} }

func (r *stubUsageRepo) CreateTx(_ *gorm.DB, u *model.MaterialUsage) error {
	r.nextID++
	u.ID = r.nextID
	r.usages = append(r.usages, u)
	return nil
}

func (r *stubUsageRepo) SumQuantityByMaterialTx(_ *gorm.DB, materialID uuid.UUID) (int, error) {
	sum := 0
	for _, u := range r.usages {
		if u.MaterialID == materialID {
			sum += u.QuantityUsed
		}
	}
	return sum, nil
}

func (r *stubUsageRepo) SumQuantityByMaterial(_ context.Context, materialID uuid.UUID) (int, error) {
	return r.SumQuantityByMaterialTx(nil, materialID)
}

func (r *stubUsageRepo) ListByMaterial(_ context.Context, materialID uuid.UUID) ([]model.MaterialUsage, error) {
	var result []model.MaterialUsage
	for _, u := range r.usages {
		if u.MaterialID == materialID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUsageRepo) ListBySku(_ context.Context, skuID uuid.UUID) ([]model.MaterialUsage, error) {
	var result []model.MaterialUsage
	for _, u := range r.usages {
		if u.SkuID == skuID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUsageRepo) CountByMaterial(_ context.Context, materialID uuid.UUID) (int64, error) {
	var count int64
	for _, u := range r.usages {
		if u.MaterialID == materialID {
			count++
		}
	}
	return count, nil
}

var _ repository.UsageRepository = (*stubUsageRepo)(nil)

// ── Purchases ────────────────────────────────────────────────────────────────

type stubPurchaseRepo struct {
	purchases map[uuid.UUID]*model.Purchase
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{purchases: make(map[uuid.UUID]*model.Purchase)}
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPurchaseRepo) FindByCode(_ context.Context, code string) (*model.Purchase, error) {
	for _, p := range r.purchases {
		if p.PurchaseCode == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPurchaseRepo) List(_ context.Context, _ repository.PurchaseFilter) ([]model.Purchase, int64, error) {
	var result []model.Purchase
	for _, p := range r.purchases {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *stubPurchaseRepo) ListAll(_ context.Context) ([]model.Purchase, error) {
	var result []model.Purchase
	for _, p := range r.purchases {
		result = append(result, *p)
	}
	return result, nil
}

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, p *model.Purchase) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.purchases[p.ID] = p
	return nil
}

func (r *stubPurchaseRepo) SaveTx(_ *gorm.DB, p *model.Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

func (r *stubPurchaseRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.PurchaseStatus) error {
	p, ok := r.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *stubPurchaseRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.purchases, id)
	return nil
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

var _ repository.PurchaseRepository = (*stubPurchaseRepo)(nil)

// ── SKUs ─────────────────────────────────────────────────────────────────────

type stubSkuRepo struct {
	skus    map[uuid.UUID]*model.ProductSku
	recipes map[uuid.UUID][]model.SkuRecipeItem
}

func newStubSkuRepo() *stubSkuRepo {
	return &stubSkuRepo{
		skus:    make(map[uuid.UUID]*model.ProductSku),
		recipes: make(map[uuid.UUID][]model.SkuRecipeItem),
	}
}

func (r *stubSkuRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductSku, error) {
	sku, ok := r.skus[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *sku
	out.Recipe = r.recipes[id]
	return &out, nil
}

func (r *stubSkuRepo) FindByCode(_ context.Context, code string) (*model.ProductSku, error) {
	for _, sku := range r.skus {
		if sku.SkuCode == code {
			return sku, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSkuRepo) List(_ context.Context, _ repository.SkuFilter) ([]model.ProductSku, int64, error) {
	var result []model.ProductSku
	for _, sku := range r.skus {
		result = append(result, *sku)
	}
	return result, int64(len(result)), nil
}

func (r *stubSkuRepo) ListAll(_ context.Context) ([]model.ProductSku, error) {
	var result []model.ProductSku
	for _, sku := range r.skus {
		result = append(result, *sku)
	}
	return result, nil
}

func (r *stubSkuRepo) FindRecipe(_ context.Context, skuID uuid.UUID) ([]model.SkuRecipeItem, error) {
	return r.recipes[skuID], nil
}

func (r *stubSkuRepo) CreateTx(_ *gorm.DB, sku *model.ProductSku) error {
	if sku.ID == uuid.Nil {
		sku.ID = uuid.New()
	}
	r.skus[sku.ID] = sku
	return nil
}

func (r *stubSkuRepo) CreateRecipeItemsTx(_ *gorm.DB, items []model.SkuRecipeItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		r.recipes[items[i].SkuID] = append(r.recipes[items[i].SkuID], items[i])
	}
	return nil
}

func (r *stubSkuRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.ProductSku, error) {
	sku, ok := r.skus[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *sku
	return &out, nil
}

func (r *stubSkuRepo) FindRecipeTx(_ *gorm.DB, skuID uuid.UUID) ([]model.SkuRecipeItem, error) {
	return r.recipes[skuID], nil
}

func (r *stubSkuRepo) UpdateQuantitiesTx(_ *gorm.DB, id uuid.UUID, total, available int) error {
	sku, ok := r.skus[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sku.TotalQuantity = total
	sku.AvailableQuantity = available
	return nil
}

func (r *stubSkuRepo) UpdateCostsTx(_ *gorm.DB, sku *model.ProductSku) error {
	stored, ok := r.skus[sku.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.MaterialCost = sku.MaterialCost
	stored.TotalCost = sku.TotalCost
	stored.ProfitMargin = sku.ProfitMargin
	return nil
}

func (r *stubSkuRepo) DB() *gorm.DB { return nil }

var _ repository.SkuRepository = (*stubSkuRepo)(nil)

// ── Inventory logs ───────────────────────────────────────────────────────────

type stubInventoryLogRepo struct {
	entries []*model.SkuInventoryLog
	nextID  int64
}

func newStubInventoryLogRepo() *stubInventoryLogRepo { return &stubInventoryLogRepo{} }

func (r *stubInventoryLogRepo) CreateTx(_ *gorm.DB, entry *model.SkuInventoryLog) error {
	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubInventoryLogRepo) LastBySkuTx(_ *gorm.DB, skuID uuid.UUID) (*model.SkuInventoryLog, error) {
	var last *model.SkuInventoryLog
	for _, e := range r.entries {
		if e.SkuID == skuID {
			last = e
		}
	}
	return last, nil
}

func (r *stubInventoryLogRepo) ListBySku(_ context.Context, skuID uuid.UUID) ([]model.SkuInventoryLog, error) {
	return r.ListBySkuTx(nil, skuID)
}

func (r *stubInventoryLogRepo) ListBySkuTx(_ *gorm.DB, skuID uuid.UUID) ([]model.SkuInventoryLog, error) {
	var result []model.SkuInventoryLog
	for _, e := range r.entries {
		if e.SkuID == skuID {
			result = append(result, *e)
		}
	}
	return result, nil
}

var _ repository.InventoryLogRepository = (*stubInventoryLogRepo)(nil)
