package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crystalerp/internal/dto"
	"crystalerp/internal/model"
	"crystalerp/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseService manages supplier acquisitions and their derived materials.
// Purchase and material are written in the same transaction in both create
// and edit paths, so the pair can never drift apart.
type PurchaseService interface {
	Create(ctx context.Context, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error)
	List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
	materials repository.MaterialRepository
	usages    repository.UsageRepository
	ledger    MaterialLedger
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	materials repository.MaterialRepository,
	usages repository.UsageRepository,
	ledger MaterialLedger,
) PurchaseService {
	return &purchaseService{
		purchases: purchases,
		materials: materials,
		usages:    usages,
		ledger:    ledger,
	}
}

func (s *purchaseService) Create(ctx context.Context, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	code := req.PurchaseCode
	if code == "" {
		code = generatePurchaseCode()
	}

	p := model.Purchase{
		PurchaseCode:  code,
		PurchaseName:  req.PurchaseName,
		PurchaseType:  model.PurchaseType(req.PurchaseType),
		Quality:       req.Quality,
		BeadDiameter:  req.BeadDiameter,
		Specification: req.Specification,
		PieceCount:    req.PieceCount,
		TotalBeads:    req.TotalBeads,
		Weight:        req.Weight,
		TotalPrice:    req.TotalPrice,
		Status:        model.PurchaseActive,
		SupplierName:  req.SupplierName,
		MinStockAlert: req.MinStockAlert,
		Notes:         req.Notes,
	}

	var m *model.Material
	err := runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		if err := s.purchases.CreateTx(tx, &p); err != nil {
			return err
		}
		var err error
		m, err = s.ledger.MaterializePurchaseTx(tx, &p)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := purchaseToResponse(&p)
	resp.Material = materialToResponse(m)
	return resp, nil
}

func (s *purchaseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PurchaseName != nil {
		p.PurchaseName = *req.PurchaseName
	}
	if req.Quality != nil {
		p.Quality = req.Quality
	}
	if req.BeadDiameter != nil {
		p.BeadDiameter = req.BeadDiameter
	}
	if req.PieceCount != nil {
		p.PieceCount = req.PieceCount
	}
	if req.TotalPrice != nil {
		p.TotalPrice = *req.TotalPrice
	}
	if req.MinStockAlert != nil {
		p.MinStockAlert = req.MinStockAlert
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	var m *model.Material
	err = runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		if err := s.purchases.SaveTx(tx, p); err != nil {
			return err
		}
		var err error
		m, err = s.ledger.SyncPurchaseEditTx(tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := purchaseToResponse(p)
	resp.Material = materialToResponse(m)
	return resp, nil
}

// Delete removes a purchase and its material. Refused once any of the
// material's stock has been consumed — the usage history would dangle.
func (s *purchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.materials.FindByPurchaseID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		m = nil
	}
	if m != nil {
		count, err := s.usages.CountByMaterial(ctx, m.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("purchase %s has %d usage records and cannot be deleted", id, count)
		}
	}

	return runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		if m != nil {
			if err := s.materials.DeleteTx(tx, m.ID); err != nil {
				return err
			}
		}
		return s.purchases.DeleteTx(tx, id)
	})
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := purchaseToResponse(p)
	if p.Material != nil {
		resp.Material = materialToResponse(p.Material)
	}
	return resp, nil
}

func (s *purchaseService) List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	purchases, total, err := s.purchases.List(ctx, repository.PurchaseFilter{
		PurchaseType: filter.PurchaseType,
		Status:       filter.Status,
		Quality:      filter.Quality,
		Name:         filter.Name,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, *purchaseToResponse(&purchases[i]))
	}
	return &dto.PurchaseListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func generatePurchaseCode() string {
	return fmt.Sprintf("PUR-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.New().String()[:6]))
}

func purchaseToResponse(p *model.Purchase) *dto.PurchaseResponse {
	return &dto.PurchaseResponse{
		ID:            p.ID.String(),
		PurchaseCode:  p.PurchaseCode,
		PurchaseName:  p.PurchaseName,
		PurchaseType:  string(p.PurchaseType),
		Quality:       p.Quality,
		BeadDiameter:  p.BeadDiameter,
		Specification: p.Specification,
		PieceCount:    p.PieceCount,
		TotalBeads:    p.TotalBeads,
		Weight:        p.Weight,
		TotalPrice:    p.TotalPrice,
		Status:        string(p.Status),
		SupplierName:  p.SupplierName,
		MinStockAlert: p.MinStockAlert,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func materialToResponse(m *model.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:                m.ID.String(),
		PurchaseID:        m.PurchaseID.String(),
		MaterialName:      m.MaterialName,
		MaterialType:      string(m.MaterialType),
		Quality:           m.Quality,
		BeadDiameter:      m.BeadDiameter,
		Specification:     m.Specification,
		OriginalQuantity:  m.OriginalQuantity,
		UsedQuantity:      m.UsedQuantity,
		RemainingQuantity: m.RemainingQuantity,
		InventoryUnit:     string(m.InventoryUnit),
		UnitCost:          m.UnitCost,
		MinStockAlert:     m.MinStockAlert,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
