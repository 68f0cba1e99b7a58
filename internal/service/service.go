package service

import (
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Entry   EntryService
	Export  ExportService
	Catalog CatalogService
}

// NewService 创建 Service 聚合
func NewService(
	repo *repository.Repository,
	cat *catalog.Catalog,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(blacklist, logger),
		Entry:   NewEntryService(repo, logger),
		Export:  NewExportService(repo, cat, logger),
		Catalog: NewCatalogService(cat),
	}
}
