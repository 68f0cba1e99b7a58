package service

import (
	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/dto"
)

// CatalogService 功课目录查询
type CatalogService interface {
	List() []dto.ExerciseResponse
}

type catalogService struct {
	catalog *catalog.Catalog
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(cat *catalog.Catalog) CatalogService {
	return &catalogService{catalog: cat}
}

func (s *catalogService) List() []dto.ExerciseResponse {
	all := s.catalog.All()
	result := make([]dto.ExerciseResponse, 0, len(all))
	for _, e := range all {
		item := dto.ExerciseResponse{
			ID:       e.ID,
			Label:    e.Label,
			EveryDay: e.Availability.EveryDay,
		}
		if !e.Availability.EveryDay {
			day := e.Availability.Weekday
			item.Weekday = &day
		}
		result = append(result, item)
	}
	return result
}
