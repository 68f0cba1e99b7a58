package handler

import "github.com/Yvesthior/moncareme-agd/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Entry    *EntryHandler
	Exercise *ExerciseHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Entry:    NewEntryHandler(svc.Entry, svc.Export),
		Exercise: NewExerciseHandler(svc.Catalog),
	}
}
