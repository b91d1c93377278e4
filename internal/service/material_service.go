package service

import (
	"context"

	"crystalerp/internal/dto"
	"crystalerp/internal/repository"

	"github.com/google/uuid"
)

// MaterialService exposes read access to the material ledger. Materials are
// never written through this service — all writes go through the purchase
// sync and the allocator.
type MaterialService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	List(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error)
	ListLowStock(ctx context.Context) ([]dto.MaterialResponse, error)
	ListUsages(ctx context.Context, materialID uuid.UUID) ([]dto.UsageResponse, error)
}

type materialService struct {
	materials repository.MaterialRepository
	usages    repository.UsageRepository
}

func NewMaterialService(materials repository.MaterialRepository, usages repository.UsageRepository) MaterialService {
	return &materialService{materials: materials, usages: usages}
}

func (s *materialService) Get(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return materialToResponse(m), nil
}

func (s *materialService) List(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	materials, total, err := s.materials.List(ctx, repository.MaterialFilter{
		MaterialType: filter.MaterialType,
		Quality:      filter.Quality,
		Name:         filter.Name,
		InStockOnly:  filter.InStockOnly,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(materials))
	for i := range materials {
		items = append(items, *materialToResponse(&materials[i]))
	}
	return &dto.MaterialListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *materialService) ListLowStock(ctx context.Context) ([]dto.MaterialResponse, error) {
	materials, err := s.materials.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(materials))
	for i := range materials {
		items = append(items, *materialToResponse(&materials[i]))
	}
	return items, nil
}

func (s *materialService) ListUsages(ctx context.Context, materialID uuid.UUID) ([]dto.UsageResponse, error) {
	usages, err := s.usages.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsageResponse, 0, len(usages))
	for _, u := range usages {
		resp = append(resp, dto.UsageResponse{
			ID:           u.ID,
			MaterialID:   u.MaterialID.String(),
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
