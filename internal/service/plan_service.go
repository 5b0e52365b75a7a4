package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/plan"
	"lost-university/backend/internal/validation"
	"lost-university/backend/pkg/metrics"
	"lost-university/backend/pkg/semester"
)

// ── 学习计划业务错误 ──

var (
	ErrNoPlan          = errors.New("未提供计划，且当前会话没有缓存的计划")
	ErrInvalidModuleID = errors.New("模块ID包含非法字符")
)

// PlanService 学习计划业务接口
type PlanService interface {
	// Decode 解析计划文本；文本不是计划链接时回退到会话缓存
	Decode(ctx context.Context, sessionID, text string) (*dto.PlanResponse, error)
	// Encode 生成规范文本并写入会话缓存
	Encode(ctx context.Context, sessionID string, payload *dto.PlanPayload) (*dto.EncodeResponse, error)
	// Validate 无论计划是否启用校验，都返回全部校验结果
	Validate(ctx context.Context, sessionID, text string) (*dto.ValidateResponse, error)
	// Resolve 解析计划供其他服务使用（进度、导出）
	Resolve(ctx context.Context, sessionID, text string) (*plan.DecodeResult, error)
}

type planService struct {
	store     *catalog.Store
	cache     SessionCache
	defaultSO string
	clock     Clock
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(store *catalog.Store, cache SessionCache, defaultSO string, clock Clock, m *metrics.Metrics, logger *zap.Logger) PlanService {
	if clock == nil {
		clock = time.Now
	}
	return &planService{
		store:     store,
		cache:     cache,
		defaultSO: defaultSO,
		clock:     clock,
		metrics:   m,
		logger:    logger,
	}
}

// ────────────────────── Decode ──────────────────────

func (s *planService) Decode(ctx context.Context, sessionID, text string) (*dto.PlanResponse, error) {
	snap := s.store.Snapshot()
	res, fromSession, err := s.decode(ctx, snap, sessionID, text)
	if err != nil {
		return nil, err
	}

	resp := s.toPlanResponse(snap, res)
	resp.FromSession = fromSession
	if res.Plan.ValidationEnabled {
		resp.Findings = s.evaluate(snap, res.Plan)
	}
	return resp, nil
}

// ────────────────────── Encode ──────────────────────

func (s *planService) Encode(ctx context.Context, sessionID string, payload *dto.PlanPayload) (*dto.EncodeResponse, error) {
	p, err := planFromPayload(payload)
	if err != nil {
		return nil, err
	}

	text := plan.Encode(p)
	s.metrics.ObserveEncode()
	s.save(ctx, sessionID, text)
	return &dto.EncodeResponse{Text: text}, nil
}

// ────────────────────── Validate ──────────────────────

func (s *planService) Validate(ctx context.Context, sessionID, text string) (*dto.ValidateResponse, error) {
	snap := s.store.Snapshot()
	res, _, err := s.decode(ctx, snap, sessionID, text)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidateResponse{Text: res.Text, Findings: s.evaluate(snap, res.Plan)}
	for _, f := range resp.Findings {
		if f.Severity == string(validation.SeverityHard) {
			resp.HardCount++
		} else {
			resp.SoftCount++
		}
	}
	return resp, nil
}

// ────────────────────── Resolve ──────────────────────

func (s *planService) Resolve(ctx context.Context, sessionID, text string) (*plan.DecodeResult, error) {
	res, _, err := s.decode(ctx, s.store.Snapshot(), sessionID, text)
	return res, err
}

// ── 内部方法 ──

// decode 同一次处理中只使用传入的快照
func (s *planService) decode(ctx context.Context, snap *catalog.Snapshot, sessionID, text string) (*plan.DecodeResult, bool, error) {
	codec := plan.NewCodec(snap)
	fromSession := false

	if !strings.HasPrefix(text, plan.Indicator) {
		if text != "" {
			s.metrics.ObserveDecode("no_plan", 0)
		}
		cached, ok := s.load(ctx, sessionID)
		if !ok {
			return nil, false, ErrNoPlan
		}
		text = cached
		fromSession = true
	}

	res, ok := codec.Decode(text)
	if !ok {
		s.metrics.ObserveDecode("no_plan", 0)
		return nil, false, ErrNoPlan
	}

	switch {
	case res.LegacyReplaced:
		s.metrics.ObserveDecode("legacy", len(res.UnknownModules))
	case res.Rewritten:
		s.metrics.ObserveDecode("rewritten", len(res.UnknownModules))
	default:
		s.metrics.ObserveDecode("canonical", len(res.UnknownModules))
	}
	for _, u := range res.UnknownModules {
		s.logger.Info("计划中存在未知模块",
			zap.String("session_id", sessionID),
			zap.Int("semester", u.SemesterNumber),
			zap.String("module_id", u.ModuleID),
		)
	}

	s.save(ctx, sessionID, res.Text)
	return res, fromSession, nil
}

func (s *planService) evaluate(snap *catalog.Snapshot, p *plan.Plan) []dto.FindingResponse {
	engine := validation.NewEngine(snap, semester.At(s.clock()))
	findings := engine.EvaluatePlan(p)

	result := make([]dto.FindingResponse, 0, len(findings))
	for _, f := range findings {
		s.metrics.ObserveFinding(string(f.Finding.Kind()), string(f.Finding.Severity()))
		result = append(result, dto.FindingResponse{
			ModuleID:       f.ModuleID,
			SemesterNumber: f.SemesterNumber,
			Kind:           string(f.Finding.Kind()),
			Severity:       string(f.Finding.Severity()),
			Hint:           f.Finding.Hint(),
			Detail:         f.Finding,
		})
	}
	return result
}

func (s *planService) load(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}
	text, ok, err := s.cache.Load(ctx, sessionID)
	if err != nil {
		// 缓存不可用时按“没有缓存”处理
		s.metrics.ObserveSessionCache("error")
		s.logger.Warn("读取会话计划失败", zap.String("session_id", sessionID), zap.Error(err))
		return "", false
	}
	if !ok {
		s.metrics.ObserveSessionCache("miss")
		return "", false
	}
	s.metrics.ObserveSessionCache("hit")
	return text, true
}

func (s *planService) save(ctx context.Context, sessionID, text string) {
	if sessionID == "" {
		return
	}
	if err := s.cache.Save(ctx, sessionID, text); err != nil {
		s.metrics.ObserveSessionCache("error")
		s.logger.Warn("保存会话计划失败", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.metrics.ObserveSessionCache("store")
}

func (s *planService) toPlanResponse(snap *catalog.Snapshot, res *plan.DecodeResult) *dto.PlanResponse {
	p := res.Plan
	resp := &dto.PlanResponse{
		Text:              res.Text,
		Rewritten:         res.Rewritten,
		LegacyReplaced:    res.LegacyReplaced,
		Studienordnung:    semester.Studienordnung(p.StartSemester, s.defaultSO),
		ValidationEnabled: p.ValidationEnabled,
		Semesters:         make([]dto.PlanSemesterResponse, 0, len(p.Semesters)),
		UnknownModules:    make([]dto.UnknownModuleResponse, 0, len(res.UnknownModules)),
		Findings:          []dto.FindingResponse{},
	}
	if p.StartSemester != nil {
		resp.StartSemester = p.StartSemester.String()
	}
	for _, sem := range p.Semesters {
		resp.Semesters = append(resp.Semesters, dto.PlanSemesterResponse{
			Number:    sem.Number,
			Name:      sem.Name,
			ModuleIDs: sem.ModuleIDs,
			ECTS:      sumECTS(snap, sem.ModuleIDs, nil),
		})
	}
	for _, u := range res.UnknownModules {
		resp.UnknownModules = append(resp.UnknownModules, dto.UnknownModuleResponse{
			SemesterNumber: u.SemesterNumber,
			ModuleID:       u.ModuleID,
		})
	}
	return resp
}

// planFromPayload 构造计划；模块 ID 不得包含分隔符，否则无法编码
func planFromPayload(payload *dto.PlanPayload) (*plan.Plan, error) {
	p := plan.New()
	if payload.ValidationEnabled != nil {
		p.ValidationEnabled = *payload.ValidationEnabled
	}
	if payload.StartSemester != "" {
		start, ok := semester.Parse(payload.StartSemester)
		if !ok {
			return nil, ErrInvalidSemester
		}
		p.StartSemester = &start
	}

	for _, sp := range payload.Semesters {
		ids := make([]string, 0, len(sp.ModuleIDs))
		for _, id := range sp.ModuleIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if strings.ContainsAny(id, plan.SemesterSeparator+plan.ModuleSeparator+"?&#/= ") {
				return nil, ErrInvalidModuleID
			}
			ids = append(ids, id)
		}
		p.Semesters = append(p.Semesters, plan.Semester{ModuleIDs: ids})
	}
	p.Normalize()
	return p, nil
}

// sumECTS 汇总目录中已知模块的学分；filter 为 nil 时不过滤
func sumECTS(snap catalog.Lookup, ids []string, filter func(id string) bool) float64 {
	total := 0.0
	for _, id := range ids {
		if filter != nil && !filter(id) {
			continue
		}
		if m, ok := snap.FindByID(id); ok {
			total += m.ECTS
		}
	}
	return total
}
