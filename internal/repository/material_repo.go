package repository

import (
	"context"

	"crystalerp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialFilter defines filters for listing materials.
type MaterialFilter struct {
	MaterialType string
	Quality      string
	Name         string
	InStockOnly  bool
	Page         int
	Limit        int
}

type MaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*model.Material, error)
	List(ctx context.Context, filter MaterialFilter) ([]model.Material, int64, error)
	// ListLowStock returns materials whose remaining quantity is at or below
	// their min-stock alert threshold.
	ListLowStock(ctx context.Context) ([]model.Material, error)
	ListAll(ctx context.Context) ([]model.Material, error)

	CreateTx(tx *gorm.DB, m *model.Material) error
	SaveTx(tx *gorm.DB, m *model.Material) error
	// FindByIDForUpdateTx locks the material row (SELECT ... FOR UPDATE) so
	// concurrent allocations against the same material serialize instead of
	// both passing the remaining-stock check on a stale read.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Material, error)
	FindByPurchaseIDForUpdateTx(tx *gorm.DB, purchaseID uuid.UUID) (*model.Material, error)
	UpdateQuantitiesTx(tx *gorm.DB, id uuid.UUID, used, remaining int) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepository(db *gorm.DB) MaterialRepository { return &materialRepo{db: db} }

func (r *materialRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).Preload("Purchase").First(&m, id).Error
	return &m, err
}

func (r *materialRepo) FindByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).First(&m).Error
	return &m, err
}

func (r *materialRepo) List(ctx context.Context, filter MaterialFilter) ([]model.Material, int64, error) {
	var materials []model.Material
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Material{})

	if filter.MaterialType != "" {
		q = q.Where("material_type = ?", filter.MaterialType)
	}
	if filter.Quality != "" {
		q = q.Where("quality = ?", filter.Quality)
	}
	if filter.Name != "" {
		q = q.Where("material_name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.InStockOnly {
		q = q.Where("remaining_quantity > 0")
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
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&materials).Error
	return materials, total, err
}

func (r *materialRepo) ListLowStock(ctx context.Context) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).
		Where("min_stock_alert IS NOT NULL AND remaining_quantity <= min_stock_alert").
		Order("remaining_quantity ASC").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepo) ListAll(ctx context.Context) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).Order("created_at").Find(&materials).Error
	return materials, err
}

func (r *materialRepo) CreateTx(tx *gorm.DB, m *model.Material) error {
	return tx.Create(m).Error
}

func (r *materialRepo) SaveTx(tx *gorm.DB, m *model.Material) error {
	return tx.Save(m).Error
}

func (r *materialRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	return &m, err
}

func (r *materialRepo) FindByPurchaseIDForUpdateTx(tx *gorm.DB, purchaseID uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("purchase_id = ?", purchaseID).First(&m).Error
	return &m, err
}

func (r *materialRepo) UpdateQuantitiesTx(tx *gorm.DB, id uuid.UUID, used, remaining int) error {
	return tx.Model(&model.Material{}).Where("id = ?", id).Updates(map[string]interface{}{
		"used_quantity":      used,
		"remaining_quantity": remaining,
	}).Error
}

func (r *materialRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Material{}, id).Error
}
