package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/model"
	"lost-university/backend/internal/repository"
	pkgerrors "lost-university/backend/pkg/errors"
	"lost-university/backend/pkg/metrics"
	"lost-university/backend/pkg/semester"
)

// ── 目录模块业务错误 ──

var (
	ErrModuleNotFound        = errors.New("模块不存在")
	ErrInvalidStudienordnung = errors.New("学习规章无效")
	ErrEmptyCatalog          = errors.New("目录数据为空")
)

// CatalogSource 目录数据来源（远程数据仓库或本地文件）
type CatalogSource interface {
	Fetch(ctx context.Context, studienordnung string) (*catalog.Catalog, error)
}

// CatalogService 模块目录业务接口
type CatalogService interface {
	// Sync 从数据源拉取目录，写入数据库并替换内存快照；并发调用合并为一次
	Sync(ctx context.Context, studienordnung, actor string) (*dto.SyncResponse, error)
	// Apply 写入一份已加载的目录（文件监听回调使用）
	Apply(ctx context.Context, cat *catalog.Catalog, studienordnung, source string) error
	// Warm 从数据库加载模块到内存快照，启动时使用
	Warm(ctx context.Context) (int, error)

	ListModules(ctx context.Context, req *dto.ModuleListRequest) ([]dto.ModuleResponse, error)
	GetModule(ctx context.Context, id string) (*dto.ModuleResponse, error)
	ListCategories(ctx context.Context, studienordnung string) ([]dto.CategoryResponse, error)
	ListFocuses(ctx context.Context, studienordnung string) ([]dto.FocusResponse, error)
}

type catalogService struct {
	repo       *repository.Repository
	store      *catalog.Store
	source     CatalogSource
	sourceName string
	defaultSO  string
	metrics    *metrics.Metrics
	logger     *zap.Logger
	group      singleflight.Group
}

// NewCatalogService 创建 CatalogService 实例。
// sourceName 仅用于日志与指标（"remote" / "file"）。
func NewCatalogService(
	repo *repository.Repository,
	store *catalog.Store,
	source CatalogSource,
	sourceName string,
	defaultSO string,
	m *metrics.Metrics,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		repo:       repo,
		store:      store,
		source:     source,
		sourceName: sourceName,
		defaultSO:  defaultSO,
		metrics:    m,
		logger:     logger,
	}
}

// ────────────────────── Sync ──────────────────────

func (s *catalogService) Sync(ctx context.Context, studienordnung, actor string) (*dto.SyncResponse, error) {
	so, err := s.resolveSO(studienordnung)
	if err != nil {
		return nil, err
	}

	v, err, shared := s.group.Do(so, func() (interface{}, error) {
		return s.sync(ctx, so, actor)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("目录同步请求已合并", zap.String("studienordnung", so))
	}
	resp := *v.(*dto.SyncResponse)
	return &resp, nil
}

func (s *catalogService) sync(ctx context.Context, so, actor string) (*dto.SyncResponse, error) {
	start := time.Now()

	cat, err := s.source.Fetch(ctx, so)
	if err != nil {
		s.metrics.ObserveCatalogSync(s.sourceName, false, 0, time.Since(start))
		s.logger.Error("拉取目录失败", zap.String("studienordnung", so), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrUpstream, err)
	}

	if err := s.persist(ctx, cat, so, actor); err != nil {
		s.metrics.ObserveCatalogSync(s.sourceName, false, 0, time.Since(start))
		return nil, err
	}
	s.metrics.ObserveCatalogSync(s.sourceName, true, len(cat.Modules), time.Since(start))

	s.logger.Info("目录同步完成",
		zap.String("source", s.sourceName),
		zap.String("studienordnung", so),
		zap.String("actor", actor),
		zap.Int("modules", len(cat.Modules)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &dto.SyncResponse{
		Source:         s.sourceName,
		Studienordnung: so,
		Modules:        len(cat.Modules),
		Categories:     len(cat.Categories),
		Focuses:        len(cat.Focuses),
		SyncedAt:       time.Now().Format(time.RFC3339),
	}, nil
}

// ────────────────────── Apply ──────────────────────

func (s *catalogService) Apply(ctx context.Context, cat *catalog.Catalog, studienordnung, source string) error {
	so, err := s.resolveSO(studienordnung)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := s.persist(ctx, cat, so, source); err != nil {
		s.metrics.ObserveCatalogSync(source, false, 0, time.Since(start))
		return err
	}
	s.metrics.ObserveCatalogSync(source, true, len(cat.Modules), time.Since(start))
	return nil
}

// persist 写库成功后才替换快照，失败时继续使用旧快照
func (s *catalogService) persist(ctx context.Context, cat *catalog.Catalog, so, actor string) error {
	if cat == nil || len(cat.Modules) == 0 {
		return ErrEmptyCatalog
	}

	modules := make([]model.Module, len(cat.Modules))
	copy(modules, cat.Modules)
	if err := s.repo.Module.ReplaceAll(ctx, modules, actor); err != nil {
		s.logger.Error("写入模块失败", zap.Error(err))
		return err
	}
	if err := s.repo.Category.ReplaceForStudienordnung(ctx, so, cat.Categories, cat.Focuses, actor); err != nil {
		s.logger.Error("写入类别与方向失败", zap.String("studienordnung", so), zap.Error(err))
		return err
	}

	s.store.Replace(catalog.NewSnapshot(cat.Modules))
	return nil
}

// ────────────────────── Warm ──────────────────────

func (s *catalogService) Warm(ctx context.Context) (int, error) {
	modules, err := s.repo.Module.ListAll(ctx)
	if err != nil {
		s.logger.Error("从数据库加载模块失败", zap.Error(err))
		return 0, err
	}
	s.store.Replace(catalog.NewSnapshot(modules))
	s.metrics.ObserveCatalogSync("database", true, len(modules), 0)
	return len(modules), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *catalogService) ListModules(ctx context.Context, req *dto.ModuleListRequest) ([]dto.ModuleResponse, error) {
	var start *semester.Info
	if req.Start != "" {
		info, ok := semester.Parse(req.Start)
		if !ok {
			return nil, ErrInvalidSemester
		}
		start = &info
	}

	modules, err := s.repo.Module.List(ctx, repository.ModuleFilter{
		Keyword:         req.Keyword,
		Term:            req.Term,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		s.logger.Error("列出模块失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ModuleResponse, 0, len(modules))
	for i := range modules {
		result = append(result, toModuleResponse(&modules[i], start))
	}
	return result, nil
}

func (s *catalogService) GetModule(ctx context.Context, id string) (*dto.ModuleResponse, error) {
	m, err := s.repo.Module.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		s.logger.Error("查询模块失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toModuleResponse(m, nil)
	return &resp, nil
}

func (s *catalogService) ListCategories(ctx context.Context, studienordnung string) ([]dto.CategoryResponse, error) {
	so, err := s.resolveSO(studienordnung)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.Category.ListCategories(ctx, so)
	if err != nil {
		s.logger.Error("列出类别失败", zap.String("studienordnung", so), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, dto.CategoryResponse{
			ID:             c.CategoryID,
			Studienordnung: c.Studienordnung,
			Name:           c.Name,
			RequiredECTS:   c.RequiredECTS,
			ModuleIDs:      nonNil(c.ModuleIDs),
		})
	}
	return result, nil
}

func (s *catalogService) ListFocuses(ctx context.Context, studienordnung string) ([]dto.FocusResponse, error) {
	so, err := s.resolveSO(studienordnung)
	if err != nil {
		return nil, err
	}
	focuses, err := s.repo.Category.ListFocuses(ctx, so)
	if err != nil {
		s.logger.Error("列出专业方向失败", zap.String("studienordnung", so), zap.Error(err))
		return nil, err
	}

	result := make([]dto.FocusResponse, 0, len(focuses))
	for _, f := range focuses {
		result = append(result, dto.FocusResponse{
			ID:             f.FocusID,
			Studienordnung: f.Studienordnung,
			Name:           f.Name,
			ModuleIDs:      nonNil(f.ModuleIDs),
		})
	}
	return result, nil
}

// ── 辅助函数 ──

func (s *catalogService) resolveSO(studienordnung string) (string, error) {
	switch studienordnung {
	case "":
		return s.defaultSO, nil
	case semester.Studienordnung21, semester.Studienordnung23:
		return studienordnung, nil
	}
	return "", ErrInvalidStudienordnung
}

func toModuleResponse(m *model.Module, start *semester.Info) dto.ModuleResponse {
	resp := dto.ModuleResponse{
		ID:                   m.ModuleID,
		Name:                 m.Name,
		URL:                  m.URL,
		ECTS:                 m.ECTS,
		Term:                 string(m.Term),
		IsDeactivated:        m.IsDeactivated,
		SuccessorModuleID:    m.Successor(),
		PredecessorModuleID:  m.Predecessor(),
		RecommendedModuleIDs: nonNil(m.RecommendedModuleIDs),
	}
	if next := semester.NextPossibleSemesterForModule(m.Term, start); next != nil {
		resp.NextPossibleSemester = next.String()
	}
	return resp
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
