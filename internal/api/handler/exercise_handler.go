package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Yvesthior/moncareme-agd/internal/service"
	"github.com/Yvesthior/moncareme-agd/pkg/response"
)

// ExerciseHandler 功课目录 HTTP 处理器
type ExerciseHandler struct {
	catalogSvc service.CatalogService
}

// NewExerciseHandler 创建 ExerciseHandler
func NewExerciseHandler(catalogSvc service.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{catalogSvc: catalogSvc}
}

// ListExercises 获取功课目录
// GET /api/v1/exercises
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	response.OK(c, h.catalogSvc.List())
}
