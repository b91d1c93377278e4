package repository

import (
	"context"

	"crystalerp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryLogRepository interface {
	CreateTx(tx *gorm.DB, entry *model.SkuInventoryLog) error
	// LastBySkuTx returns the newest log entry for the SKU, or (nil, nil)
	// when the SKU has no entries yet.
	LastBySkuTx(tx *gorm.DB, skuID uuid.UUID) (*model.SkuInventoryLog, error)
	ListBySku(ctx context.Context, skuID uuid.UUID) ([]model.SkuInventoryLog, error)
	ListBySkuTx(tx *gorm.DB, skuID uuid.UUID) ([]model.SkuInventoryLog, error)
}

type inventoryLogRepo struct{ db *gorm.DB }

func NewInventoryLogRepository(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db: db}
}

func (r *inventoryLogRepo) CreateTx(tx *gorm.DB, entry *model.SkuInventoryLog) error {
	return tx.Create(entry).Error
}

func (r *inventoryLogRepo) LastBySkuTx(tx *gorm.DB, skuID uuid.UUID) (*model.SkuInventoryLog, error) {
	var entry model.SkuInventoryLog
	err := tx.Where("sku_id = ?", skuID).Order("id DESC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *inventoryLogRepo) ListBySku(ctx context.Context, skuID uuid.UUID) ([]model.SkuInventoryLog, error) {
	return r.ListBySkuTx(r.db.WithContext(ctx), skuID)
}

func (r *inventoryLogRepo) ListBySkuTx(tx *gorm.DB, skuID uuid.UUID) ([]model.SkuInventoryLog, error) {
	var entries []model.SkuInventoryLog
	err := tx.Where("sku_id = ?", skuID).Order("id").Find(&entries).Error
	return entries, err
}
