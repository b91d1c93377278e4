package repository

import (
	"context"

	"crystalerp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageRepository interface {
	CreateTx(tx *gorm.DB, u *model.MaterialUsage) error
	// SumQuantityByMaterialTx returns the signed sum over the material's full
	// usage history. Allocation always recomputes used_quantity from this sum
	// inside the writing transaction — never from an incremental counter.
	SumQuantityByMaterialTx(tx *gorm.DB, materialID uuid.UUID) (int, error)
	SumQuantityByMaterial(ctx context.Context, materialID uuid.UUID) (int, error)
	ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]model.MaterialUsage, error)
	ListBySku(ctx context.Context, skuID uuid.UUID) ([]model.MaterialUsage, error)
	CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error)
}

type usageRepo struct{ db *gorm.DB }

func NewUsageRepository(db *gorm.DB) UsageRepository { return &usageRepo{db: db} }

func (r *usageRepo) CreateTx(tx *gorm.DB, u *model.MaterialUsage) error {
	return tx.Create(u).Error
}

func (r *usageRepo) SumQuantityByMaterialTx(tx *gorm.DB, materialID uuid.UUID) (int, error) {
	var sum *int
	err := tx.Model(&model.MaterialUsage{}).
		Where("material_id = ?", materialID).
		Select("SUM(quantity_used)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (r *usageRepo) SumQuantityByMaterial(ctx context.Context, materialID uuid.UUID) (int, error) {
	return r.SumQuantityByMaterialTx(r.db.WithContext(ctx), materialID)
}

func (r *usageRepo) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]model.MaterialUsage, error) {
	var usages []model.MaterialUsage
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("id").
		Find(&usages).Error
	return usages, err
}

func (r *usageRepo) ListBySku(ctx context.Context, skuID uuid.UUID) ([]model.MaterialUsage, error) {
	var usages []model.MaterialUsage
	err := r.db.WithContext(ctx).
		Preload("Material").
		Where("sku_id = ?", skuID).
		Order("id").
		Find(&usages).Error
	return usages, err
}

func (r *usageRepo) CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MaterialUsage{}).
		Where("material_id = ?", materialID).
		Count(&count).Error
	return count, err
}
