package repository

import (
	"context"

	"crystalerp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseFilter defines filters for listing purchases.
type PurchaseFilter struct {
	PurchaseType string
	Status       string
	Quality      string
	Name         string
	Page         int
	Limit        int
}

// PurchaseRepository defines the data access contract for purchases.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByCode(ctx context.Context, code string) (*model.Purchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error)
	ListAll(ctx context.Context) ([]model.Purchase, error)

	// Used inside transactions — callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	SaveTx(tx *gorm.DB, p *model.Purchase) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.PurchaseStatus) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).Preload("Material").First(&p, id).Error
	return &p, err
}

func (r *purchaseRepo) FindByCode(ctx context.Context, code string) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).Where("purchase_code = ?", code).First(&p).Error
	return &p, err
}

func (r *purchaseRepo) List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Purchase{})

	if filter.PurchaseType != "" {
		q = q.Where("purchase_type = ?", filter.PurchaseType)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Quality != "" {
		q = q.Where("quality = ?", filter.Quality)
	}
	if filter.Name != "" {
		q = q.Where("purchase_name ILIKE ?", "%"+filter.Name+"%")
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
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&purchases).Error
	return purchases, total, err
}

func (r *purchaseRepo) ListAll(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.WithContext(ctx).Order("created_at").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Create(p).Error
}

func (r *purchaseRepo) SaveTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Save(p).Error
}

func (r *purchaseRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.PurchaseStatus) error {
	return tx.Model(&model.Purchase{}).Where("id = ?", id).Update("status", status).Error
}

func (r *purchaseRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Purchase{}, id).Error
}

func (r *purchaseRepo) DB() *gorm.DB { return r.db }
