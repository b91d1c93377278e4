package repository

import (
	"context"

	"crystalerp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkuFilter defines filters for listing SKUs.
type SkuFilter struct {
	Name        string
	Code        string
	InStockOnly bool
	Page        int
	Limit       int
}

type SkuRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductSku, error)
	FindByCode(ctx context.Context, code string) (*model.ProductSku, error)
	List(ctx context.Context, filter SkuFilter) ([]model.ProductSku, int64, error)
	ListAll(ctx context.Context) ([]model.ProductSku, error)
	FindRecipe(ctx context.Context, skuID uuid.UUID) ([]model.SkuRecipeItem, error)

	CreateTx(tx *gorm.DB, sku *model.ProductSku) error
	CreateRecipeItemsTx(tx *gorm.DB, items []model.SkuRecipeItem) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductSku, error)
	FindRecipeTx(tx *gorm.DB, skuID uuid.UUID) ([]model.SkuRecipeItem, error)
	UpdateQuantitiesTx(tx *gorm.DB, id uuid.UUID, total, available int) error
	UpdateCostsTx(tx *gorm.DB, sku *model.ProductSku) error

	DB() *gorm.DB
}

type skuRepo struct{ db *gorm.DB }

func NewSkuRepository(db *gorm.DB) SkuRepository { return &skuRepo{db: db} }

func (r *skuRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductSku, error) {
	var sku model.ProductSku
	err := r.db.WithContext(ctx).Preload("Recipe").Preload("Recipe.Material").First(&sku, id).Error
	return &sku, err
}

func (r *skuRepo) FindByCode(ctx context.Context, code string) (*model.ProductSku, error) {
	var sku model.ProductSku
	err := r.db.WithContext(ctx).Where("sku_code = ?", code).First(&sku).Error
	return &sku, err
}

func (r *skuRepo) List(ctx context.Context, filter SkuFilter) ([]model.ProductSku, int64, error) {
	var skus []model.ProductSku
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductSku{})

	if filter.Name != "" {
		q = q.Where("sku_name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Code != "" {
		q = q.Where("sku_code = ?", filter.Code)
	}
	if filter.InStockOnly {
		q = q.Where("available_quantity > 0")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&skus).Error
	return skus, total, err
}

func (r *skuRepo) ListAll(ctx context.Context) ([]model.ProductSku, error) {
	var skus []model.ProductSku
	err := r.db.WithContext(ctx).Order("created_at").Find(&skus).Error
	return skus, err
}

func (r *skuRepo) FindRecipe(ctx context.Context, skuID uuid.UUID) ([]model.SkuRecipeItem, error) {
	return r.FindRecipeTx(r.db.WithContext(ctx), skuID)
}

func (r *skuRepo) CreateTx(tx *gorm.DB, sku *model.ProductSku) error {
	return tx.Create(sku).Error
}

func (r *skuRepo) CreateRecipeItemsTx(tx *gorm.DB, items []model.SkuRecipeItem) error {
	return tx.Create(&items).Error
}

func (r *skuRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductSku, error) {
	var sku model.ProductSku
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sku, id).Error
	return &sku, err
}

func (r *skuRepo) FindRecipeTx(tx *gorm.DB, skuID uuid.UUID) ([]model.SkuRecipeItem, error) {
	var items []model.SkuRecipeItem
	err := tx.Where("sku_id = ?", skuID).Order("created_at").Find(&items).Error
	return items, err
}

func (r *skuRepo) UpdateQuantitiesTx(tx *gorm.DB, id uuid.UUID, total, available int) error {
	return tx.Model(&model.ProductSku{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_quantity":     total,
		"available_quantity": available,
	}).Error
}

func (r *skuRepo) UpdateCostsTx(tx *gorm.DB, sku *model.ProductSku) error {
	return tx.Model(&model.ProductSku{}).Where("id = ?", sku.ID).Updates(map[string]interface{}{
		"material_cost": sku.MaterialCost,
		"total_cost":    sku.TotalCost,
		"profit_margin": sku.ProfitMargin,
	}).Error
}

func (r *skuRepo) DB() *gorm.DB { return r.db }
