package service

import (
	"go.uber.org/zap"

	"lost-university/backend/config"
	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/repository"
	"lost-university/backend/pkg/jwt"
	"lost-university/backend/pkg/metrics"
	"lost-university/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Catalog  CatalogService
	Plan     PlanService
	Progress ProgressService
	Semester SemesterService
	Export   ExportService
}

// Deps 构建 Service 聚合所需的基础设施；Redis 可为 nil
type Deps struct {
	Config     *config.Config
	Repo       *repository.Repository
	Store      *catalog.Store
	Source     CatalogSource
	SourceName string
	JWT        *jwt.Manager
	Redis      *redis.Client
	Metrics    *metrics.Metrics
	Clock      Clock
	Logger     *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	so := d.Config.Catalog.Studienordnung
	cache := NewSessionCache(d.Redis, d.Config.Session.TTL, d.Config.Session.LocalSize)

	plans := NewPlanService(d.Store, cache, so, d.Clock, d.Metrics, d.Logger)
	return &Service{
		Auth:     NewAuthService(d.JWT, NewRevocation(d.Redis), d.Logger),
		Catalog:  NewCatalogService(d.Repo, d.Store, d.Source, d.SourceName, so, d.Metrics, d.Logger),
		Plan:     plans,
		Progress: NewProgressService(plans, d.Repo, d.Store, so, d.Clock, d.Logger),
		Semester: NewSemesterService(d.Clock, so, d.Logger),
		Export:   NewExportService(plans, d.Store, d.Logger),
	}
}
