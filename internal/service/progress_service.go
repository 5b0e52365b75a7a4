package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/plan"
	"lost-university/backend/internal/repository"
	"lost-university/backend/pkg/semester"
)

// RequiredFocusModules 一个专业方向需要的模块数
const RequiredFocusModules = 8

// ProgressService 学分进度业务接口
type ProgressService interface {
	Progress(ctx context.Context, sessionID, text string) (*dto.ProgressResponse, error)
}

type progressService struct {
	plans     PlanService
	repo      *repository.Repository
	store     *catalog.Store
	defaultSO string
	clock     Clock
	logger    *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(plans PlanService, repo *repository.Repository, store *catalog.Store, defaultSO string, clock Clock, logger *zap.Logger) ProgressService {
	if clock == nil {
		clock = time.Now
	}
	return &progressService{
		plans:     plans,
		repo:      repo,
		store:     store,
		defaultSO: defaultSO,
		clock:     clock,
		logger:    logger,
	}
}

// ────────────────────── Progress ──────────────────────

func (s *progressService) Progress(ctx context.Context, sessionID, text string) (*dto.ProgressResponse, error) {
	res, err := s.plans.Resolve(ctx, sessionID, text)
	if err != nil {
		return nil, err
	}
	p := res.Plan
	snap := s.store.Snapshot()
	current := semester.At(s.clock())
	so := semester.Studienordnung(p.StartSemester, s.defaultSO)

	categories, err := s.repo.Category.ListCategories(ctx, so)
	if err != nil {
		s.logger.Error("查询类别失败", zap.String("studienordnung", so), zap.Error(err))
		return nil, err
	}
	focuses, err := s.repo.Category.ListFocuses(ctx, so)
	if err != nil {
		s.logger.Error("查询专业方向失败", zap.String("studienordnung", so), zap.Error(err))
		return nil, err
	}

	completed := CompletedSemesters(p, current)
	earnedIDs := moduleIDsOf(p.Semesters, 0, completed)
	plannedIDs := PlannedModuleIDs(p, current)

	resp := &dto.ProgressResponse{
		Text:               res.Text,
		Studienordnung:     so,
		CurrentSemester:    current.String(),
		CompletedSemesters: completed,
		EarnedECTS:         sumECTS(snap, earnedIDs, nil),
		PlannedECTS:        sumECTS(snap, plannedIDs, nil),
		Categories:         make([]dto.CategoryProgress, 0, len(categories)),
		Focuses:            make([]dto.FocusProgress, 0, len(focuses)),
	}
	if p.StartSemester != nil {
		resp.StartSemester = p.StartSemester.String()
	}

	for _, c := range categories {
		inCategory := c.ModuleIDs.Contains
		resp.Categories = append(resp.Categories, dto.CategoryProgress{
			ID:           c.CategoryID,
			Name:         c.Name,
			RequiredECTS: c.RequiredECTS,
			EarnedECTS:   sumECTS(snap, earnedIDs, inCategory),
			PlannedECTS:  sumECTS(snap, plannedIDs, inCategory),
		})
	}

	inPlan := make(map[string]bool)
	for _, id := range p.ModuleIDs() {
		inPlan[id] = true
	}
	for _, f := range focuses {
		resp.Focuses = append(resp.Focuses, FocusStatus(f.FocusID, f.Name, f.ModuleIDs, inPlan))
	}

	if p.StartSemester != nil {
		from := *p.StartSemester
		if current.After(from) {
			from = current
		}
		resp.NextPossibleSemesters = make(map[string]string)
		for _, m := range snap.Modules() {
			if m.IsDeactivated || inPlan[m.ModuleID] {
				continue
			}
			if next := semester.NextPossibleSemesterForModule(m.Term, &from); next != nil {
				resp.NextPossibleSemesters[m.ModuleID] = next.String()
			}
		}
	}
	return resp, nil
}

// ── 计算函数 ──

// CompletedSemesters 入学学期到当前学期之间已结束的学期数；
// 未设置入学学期或尚未入学时为 0，不超过计划学期数。
func CompletedSemesters(p *plan.Plan, current semester.Info) int {
	if p.StartSemester == nil {
		return 0
	}
	idx := current.Difference(*p.StartSemester)
	if idx < 0 {
		return 0
	}
	if idx > len(p.Semesters) {
		return len(p.Semesters)
	}
	return idx
}

// PlannedModuleIDs 当前学期及之后学期中的模块；
// 未设置入学学期时为空，尚未入学时为全部学期。
func PlannedModuleIDs(p *plan.Plan, current semester.Info) []string {
	if p.StartSemester == nil {
		return []string{}
	}
	idx := current.Difference(*p.StartSemester)
	if idx < 0 {
		idx = 0
	}
	return moduleIDsOf(p.Semesters, idx, len(p.Semesters))
}

// FocusStatus 专业方向还缺多少模块，以及方向内尚未规划的模块
func FocusStatus(id, name string, moduleIDs []string, inPlan map[string]bool) dto.FocusProgress {
	planned := 0
	available := make([]string, 0)
	for _, mid := range moduleIDs {
		if inPlan[mid] {
			planned++
		} else {
			available = append(available, mid)
		}
	}
	missing := RequiredFocusModules - planned
	if missing < 0 {
		missing = 0
	}
	return dto.FocusProgress{
		ID:                 id,
		Name:               name,
		MissingModules:     missing,
		AvailableModuleIDs: available,
	}
}

func moduleIDsOf(semesters []plan.Semester, from, to int) []string {
	ids := make([]string, 0)
	if from >= len(semesters) || from >= to {
		return ids
	}
	if to > len(semesters) {
		to = len(semesters)
	}
	for _, s := range semesters[from:to] {
		ids = append(ids, s.ModuleIDs...)
	}
	return ids
}
