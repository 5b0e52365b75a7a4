package handler

import "lost-university/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Plan     *PlanHandler
	Catalog  *CatalogHandler
	Semester *SemesterHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Plan:     NewPlanHandler(svc.Plan, svc.Progress, svc.Export),
		Catalog:  NewCatalogHandler(svc.Catalog),
		Semester: NewSemesterHandler(svc.Semester),
	}
}
