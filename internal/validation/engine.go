package validation

import (
	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/model"
	"lost-university/backend/internal/plan"
	"lost-university/backend/pkg/semester"
)

// MaxSuccessorHops 沿后继链查找推荐模块时的最大跳数，超过即视为未计划。
// 目录数据中的环属于外部数据错误。
const MaxSuccessorHops = 8

// ModuleFinding 计划中某个模块的校验结果
type ModuleFinding struct {
	ModuleID       string
	SemesterNumber int
	Finding        Finding
}

// Engine 计划校验器。
// 每次调用都是对整个计划的完整重新计算，不缓存任何结果。
type Engine struct {
	lookup  catalog.Lookup
	current semester.Info
}

// NewEngine 创建校验器；current 为“当前学期”，用于区分过去与未来。
func NewEngine(lookup catalog.Lookup, current semester.Info) *Engine {
	return &Engine{lookup: lookup, current: current}
}

// Evaluate 校验计划中的单个模块，没有问题或模块未被计划时返回 nil。
// 规则按顺序匹配，命中第一条即返回：
//
//	Duplicate → WrongTerm → Inactive → BeforeRecommended
func (e *Engine) Evaluate(m *model.Module, p *plan.Plan) Finding {
	positions := occurrences(p, m.ModuleID)
	if len(positions) == 0 {
		return nil
	}

	// R1 重复计划
	if len(positions) > 1 {
		return Duplicate{Affected: append([]int{}, positions[1:]...)}
	}

	number := positions[0]
	info, known := p.SemesterInfo(number)
	past := known && info.Before(e.current)

	// R2 开课学期（未设置入学学期时无法判断）
	if known && !m.Term.OfferedIn(info) {
		return WrongTerm{Target: number + 1, ModuleName: m.Name, Term: m.Term, Past: past}
	}

	// R3 已停开
	if m.IsDeactivated {
		if past && m.Successor() == "" {
			return nil
		}
		return Inactive{SuccessorModuleID: m.Successor(), ModuleName: m.Name, Past: past}
	}

	// R4 推荐先修顺序（只针对当前及未来学期）
	if past {
		return nil
	}
	missing, later := e.checkRecommended(m, number, p)
	if len(missing) > 0 || len(later) > 0 {
		return BeforeRecommended{Missing: missing, Later: later}
	}
	return nil
}

// EvaluatePlan 对计划中每个目录内的模块执行 Evaluate，按首次出现顺序返回结果
func (e *Engine) EvaluatePlan(p *plan.Plan) []ModuleFinding {
	findings := make([]ModuleFinding, 0)
	for _, id := range p.ModuleIDs() {
		m, ok := e.lookup.FindByID(id)
		if !ok {
			continue
		}
		if f := e.Evaluate(m, p); f != nil {
			findings = append(findings, ModuleFinding{
				ModuleID:       id,
				SemesterNumber: occurrences(p, id)[0],
				Finding:        f,
			})
		}
	}
	return findings
}

// ────── 内部方法 ──────

func (e *Engine) checkRecommended(m *model.Module, number int, p *plan.Plan) (missing, later []string) {
	missing = make([]string, 0)
	later = make([]string, 0)
	for _, id := range m.RecommendedModuleIDs {
		pos, ok := e.resolvePosition(id, p)
		switch {
		case !ok:
			missing = append(missing, id)
		case pos > number:
			later = append(later, id)
		}
	}
	return missing, later
}

// resolvePosition 查找 id 在计划中的学期编号；
// 未直接计划时沿一跳后继链查找，最多 MaxSuccessorHops 跳。
func (e *Engine) resolvePosition(id string, p *plan.Plan) (int, bool) {
	if pos := firstOccurrence(p, id); pos > 0 {
		return pos, true
	}
	current := id
	for hop := 0; hop < MaxSuccessorHops; hop++ {
		successor, ok := e.lookup.FindByPredecessorID(current)
		if !ok {
			return 0, false
		}
		if pos := firstOccurrence(p, successor.ModuleID); pos > 0 {
			return pos, true
		}
		current = successor.ModuleID
	}
	return 0, false
}

// occurrences 包含该模块的学期编号，按计划顺序去重（同一学期内重复只计一次）
func occurrences(p *plan.Plan, id string) []int {
	var positions []int
	for _, s := range p.Semesters {
		for _, mid := range s.ModuleIDs {
			if mid == id {
				positions = append(positions, s.Number)
				break
			}
		}
	}
	return positions
}

func firstOccurrence(p *plan.Plan, id string) int {
	for _, s := range p.Semesters {
		for _, mid := range s.ModuleIDs {
			if mid == id {
				return s.Number
			}
		}
	}
	return 0
}
